package notification

import "encoding/json"

type DispatchRequest struct {
	Title string            `json:"title" binding:"required"`
	Body  string            `json:"body" binding:"required"`
	Type  string            `json:"type"`
	Data  map[string]string `json:"data"`

	// Exactly one targeting mode: explicit user IDs, a role, a topic, or
	// none of them for an all-users broadcast.
	TargetUserIDs []int64 `json:"target_user_ids"`
	TargetRole    string  `json:"target_role"`
	Topic         string  `json:"topic"`
}

type RegisterTokenRequest struct {
	Token      string `json:"token" binding:"required"`
	DeviceType string `json:"device_type"`
	DeviceName string `json:"device_name"`
}

type RemoveTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// DispatchResult is the aggregate outcome of a dispatch run.
type DispatchResult struct {
	NotificationID int64 `json:"notification_id"`
	TotalDevices   int   `json:"total_devices"`
	Sent           int   `json:"sent"`
	Success        int   `json:"success"`
	Failed         int   `json:"failed"`
}

func encodeData(data map[string]string) json.RawMessage {
	if len(data) == 0 {
		return nil
	}
	b, _ := json.Marshal(data)
	return b
}

func decodeData(raw json.RawMessage) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}
