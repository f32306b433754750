package model

type EventKind string

const (
	EventModelSubmitted    EventKind = "model_submitted"
	EventManifestExtended  EventKind = "manifest_extended"
	EventShardStored       EventKind = "shard_stored"
	EventValidationPassed  EventKind = "validation_passed"
	EventValidationFailed  EventKind = "validation_failed"
	EventModelApproved     EventKind = "model_approved"
	EventModelRejected     EventKind = "model_rejected"
	EventModelActivated    EventKind = "model_activated"
	EventModelDeprecated   EventKind = "model_deprecated"
	EventModelWithdrawn    EventKind = "model_withdrawn"
	EventSecurityHold      EventKind = "security_hold"
	EventSecurityCleared   EventKind = "security_cleared"
	EventShardAccess       EventKind = "shard_access"
	EventAccessGranted     EventKind = "access_granted"
	EventUploaderAdded     EventKind = "uploader_added"
	EventUploaderRemoved   EventKind = "uploader_removed"
	EventBadgeGranted      EventKind = "badge_granted"
	EventMarkerCleared     EventKind = "marker_cleared"
	EventOperationRejected EventKind = "operation_rejected"
)

func ParseEventKind(s string) (EventKind, bool) {
	switch EventKind(s) {
	case EventModelSubmitted, EventManifestExtended, EventShardStored, EventValidationPassed, EventValidationFailed,
		EventModelApproved, EventModelRejected, EventModelActivated, EventModelDeprecated,
		EventModelWithdrawn, EventSecurityHold, EventSecurityCleared, EventShardAccess,
		EventAccessGranted, EventUploaderAdded, EventUploaderRemoved, EventBadgeGranted,
		EventMarkerCleared, EventOperationRejected:
		return EventKind(s), true
	}

	return "", false
}

// AuditEntry is one append-only audit record. Seq is assigned by the audit
// log and totally orders accepted operations.
type AuditEntry struct {
	Seq       uint64
	ModelID   ModelID
	Kind      EventKind
	Actor     string
	Timestamp int64
	Details   string
}
