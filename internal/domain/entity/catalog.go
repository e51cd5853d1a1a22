package entity

// Storymaster набор сущностей настольного приложения, доступных мобильному клиенту.
// Внешние ключи намеренно не объявлены: клиент может прислать дочернюю запись раньше родителя.
func Storymaster() *Registry {
	return MustNewRegistry(
		// сюжеты и сеттинги
		NewType("storyline", "storyline",
			Text("name"),
			Text("description"),
			Int("user_id"),
		),
		NewType("setting", "setting",
			Text("name"),
			Text("description"),
			Int("user_id"),
		),
		NewType("storyline_to_setting", "storyline_to_setting",
			Int("storyline_id"),
			Int("setting_id"),
		),

		// справочники персонажей
		NewType("class", "class",
			Text("class_name"),
			Text("class_description"),
			Int("group_id").NotNull(),
		),
		NewType("background", "background",
			Text("background_name"),
			Text("background_description"),
			Int("group_id").NotNull(),
		),
		NewType("race", "race",
			Text("race_name"),
			Text("race_description"),
			Int("group_id").NotNull(),
		),
		NewType("sub_race", "sub_race",
			Int("parent_race_id"),
			Text("sub_race_name"),
			Text("sub_race_description"),
			Int("group_id").NotNull(),
		),
		NewType("skills", "skills",
			Text("skill_name"),
			Text("skill_description"),
			Text("skill_trait"),
			Int("group_id").NotNull(),
		),
		NewType("stat", "stat",
			Text("name"),
			Text("description"),
			Int("setting_id"),
		),

		// персонажи
		NewType("actor", "actor",
			Text("first_name"),
			Text("middle_name"),
			Text("last_name"),
			Text("title"),
			Int("actor_age"),
			Int("class_id"),
			Int("actor_level"),
			Int("background_id"),
			Text("job"),
			Text("actor_role"),
			Int("race_id"),
			Int("sub_race_id"),
			Text("alignment"),
			Int("strength"),
			Int("dexterity"),
			Int("constitution"),
			Int("intelligence"),
			Int("wisdom"),
			Int("charisma"),
			Text("ideal"),
			Text("bond"),
			Text("flaw"),
			Text("appearance"),
			Text("strengths"),
			Text("weaknesses"),
			Text("notes"),
			Int("group_id").NotNull(),
		),
		NewType("actor_a_on_b_relations", "actor_a_on_b_relations",
			Int("actor_a_id"),
			Int("actor_b_id"),
			Text("overall"),
			Text("economically"),
			Text("power_dynamic"),
			Int("group_id").NotNull(),
		),
		NewType("actor_to_class", "actor_to_class",
			Int("actor_id"),
			Int("class_id"),
			Int("setting_id"),
			Int("level"),
			Int("current_level"),
			Int("experience_points"),
			Text("specialization"),
			Text("training_location"),
			Text("mentor"),
		),
		NewType("actor_to_race", "actor_to_race",
			Int("actor_id"),
			Int("race_id"),
			Int("setting_id"),
			Int("heritage_strength"),
			Text("cultural_upbringing"),
			Text("community_standing"),
		),
		NewType("actor_to_skills", "actor_to_skills",
			Int("actor_id"),
			Int("skill_id"),
			Int("skill_level"),
			Int("group_id").NotNull(),
		),
		NewType("actor_to_stat", "actor_to_stat",
			Int("actor_id"),
			Int("stat_id"),
			Int("setting_id"),
			Int("stat_value"),
			Int("base_value"),
			Int("modifier"),
			Text("notes"),
		),

		// фракции
		NewType("faction", "faction",
			Text("faction_name"),
			Text("faction_description"),
			Text("goals"),
			Text("faction_values"),
			Text("faction_income_sources"),
			Text("faction_expenses"),
			Int("group_id").NotNull(),
		),
		NewType("faction_a_on_b_relations", "faction_a_on_b_relations",
			Int("faction_a_id"),
			Int("faction_b_id"),
			Text("overall"),
			Text("economically"),
			Text("politically"),
			Text("opinion"),
			Int("group_id").NotNull(),
		),
		NewType("faction_members", "faction_members",
			Int("actor_id"),
			Int("faction_id"),
			Text("actor_role"),
			Int("relative_power"),
			Int("group_id").NotNull(),
		),

		// локации
		NewType("location", "location_",
			Text("location_name"),
			Text("location_type"),
			Text("location_description"),
			Text("sights"),
			Text("smells"),
			Text("sounds"),
			Text("feels"),
			Text("tastes"),
			Text("coordinates"),
			Int("group_id").NotNull(),
		),
		NewType("location_city", "location_city",
			Int("location_id"),
			Text("government"),
			Int("group_id").NotNull(),
		),
		NewType("location_city_districts", "location_city_districts",
			Int("location_id"),
			Int("district_id"),
			Int("group_id").NotNull(),
		),
		NewType("location_dungeon", "location_dungeon",
			Int("location_id"),
			Text("dangers"),
			Text("traps"),
			Text("secrets"),
			Int("group_id").NotNull(),
		),
		NewType("location_flora_fauna", "location_flora_fauna",
			Int("location_id"),
			Text("living_name"),
			Text("living_description"),
			Text("living_type"),
			Int("group_id").NotNull(),
		),
		NewType("residents", "residents",
			Int("actor_id"),
			Int("location_id"),
			Int("group_id").NotNull(),
		),

		// предметы и мир
		NewType("object_", "object_",
			Text("object_name"),
			Text("object_description"),
			Int("object_value"),
			Text("rarity"),
			Int("group_id").NotNull(),
		),
		NewType("object_to_owner", "object_to_owner",
			Int("object_id"),
			Int("actor_id"),
			Int("group_id").NotNull(),
		),
		NewType("world_data", "world_data",
			Text("data_name"),
			Text("data_description"),
			Int("group_id").NotNull(),
		),

		// история
		NewType("history", "history",
			Text("event_name"),
			Int("event_year"),
			Text("event_description"),
			Int("group_id").NotNull(),
		),
		NewType("history_actor", "history_actor",
			Int("history_id"),
			Int("actor_id"),
			Int("group_id").NotNull(),
		),
		NewType("history_faction", "history_faction",
			Int("history_id"),
			Int("faction_id"),
			Int("group_id").NotNull(),
		),
		NewType("history_location", "history_location",
			Int("history_id"),
			Int("location_id"),
			Int("group_id").NotNull(),
		),
		NewType("history_object", "history_object",
			Int("history_id"),
			Int("object_id"),
			Int("group_id").NotNull(),
		),
		NewType("history_world_data", "history_world_data",
			Int("history_id"),
			Int("world_data_id"),
			Int("group_id").NotNull(),
		),

		// литография
		NewType("litography_plot", "litography_plot",
			Text("title").NotNull(),
			Text("description"),
			Int("project_id").NotNull(),
		),
		NewType("litography_plot_section", "litography_plot_section",
			Text("plot_section_type").NotNull(),
			Int("plot_id").NotNull(),
		),
		NewType("litography_node", "litography_node",
			Text("node_type").NotNull(),
			Float("node_height").NotNull(),
			Int("previous_node"),
			Int("next_node"),
			Int("project_id").NotNull(),
		),
		NewType("litography_node_to_plot_section", "litography_node_to_plot_section",
			Int("node_id"),
			Int("litography_plot_section_id"),
		),
		NewType("node_connection", "node_connection",
			Int("output_node_id"),
			Int("input_node_id"),
		),
		NewType("litography_notes", "litography_notes",
			Text("title").NotNull(),
			Text("description"),
			Text("note_type").NotNull(),
			Int("linked_node").NotNull(),
			Int("project_id").NotNull(),
		),

		// арки
		NewType("litography_arc", "litography_arc",
			Int("project_id").NotNull(),
		),
		NewType("arc_type", "arc_type",
			Text("name").NotNull(),
			Text("description"),
			Int("setting_id").NotNull(),
		),
		NewType("arc_point", "arc_point",
			Int("arc_id"),
			Int("node_id"),
			Int("order_index"),
			Text("title"),
			Text("description"),
			Text("emotional_state"),
			Text("goals"),
			Text("internal_conflict"),
		),
		NewType("arc_to_node", "arc_to_node",
			Int("node_id"),
			Int("arc_id"),
		),
		NewType("arc_to_actor", "arc_to_actor",
			Int("actor_id").NotNull(),
			Int("arc_id").NotNull(),
		),
	)
}
