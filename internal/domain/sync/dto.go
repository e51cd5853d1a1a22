package sync

// PullRequest запрос изменений; пустой since_timestamp означает полную синхронизацию
type PullRequest struct {
	SinceTimestamp *Timestamp `json:"since_timestamp,omitempty" doc:"Только изменения после этого момента"`
	EntityTypes    []string   `json:"entity_types,omitempty" doc:"Фильтр по типам сущностей"`
}

type PullResponse struct {
	Changes       []EntityChange `json:"changes"`
	SyncTimestamp Timestamp      `json:"sync_timestamp"`
	HasMore       bool           `json:"has_more"`
}

type PushRequest struct {
	Changes []EntityChange `json:"changes"`
}

type StatusResponse struct {
	DeviceID            string     `json:"device_id"`
	DeviceName          string     `json:"device_name"`
	LastSyncAt          *Timestamp `json:"last_sync_at"`
	PendingChangesCount int        `json:"pending_changes_count"`
	ServerTimestamp     Timestamp  `json:"server_timestamp"`
}
