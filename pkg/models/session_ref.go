package models

import "encoding/json"

// AdHocStorageID is the pseudo-session the store uses for undocumented intake
// rows. Code never compares against this string directly; it routes on
// SessionRef.Kind and only the store boundary renders it.
const AdHocStorageID = "BLIND-RECEIVE"

type SessionKind int

const (
	SessionManifest SessionKind = iota
	SessionAdHoc
)

// SessionRef identifies which receiving session a line belongs to: a manifest
// (GR document) session or the reserved ad-hoc intake pseudo-session.
type SessionRef struct {
	kind SessionKind
	gr   string
}

func ManifestSession(grNumber string) SessionRef {
	return SessionRef{kind: SessionManifest, gr: grNumber}
}

func AdHocSession() SessionRef {
	return SessionRef{kind: SessionAdHoc}
}

// SessionFromStored maps a persisted gr_number value back to a SessionRef.
func SessionFromStored(id string) SessionRef {
	if id == AdHocStorageID {
		return AdHocSession()
	}
	return ManifestSession(id)
}

func (s SessionRef) Kind() SessionKind {
	return s.kind
}

func (s SessionRef) IsAdHoc() bool {
	return s.kind == SessionAdHoc
}

// StorageID is the gr_number value persisted for this session.
func (s SessionRef) StorageID() string {
	switch s.kind {
	case SessionAdHoc:
		return AdHocStorageID
	default:
		return s.gr
	}
}

func (s SessionRef) String() string {
	return s.StorageID()
}

func (s SessionRef) CreateLogView() AuditLog {
	return AuditLog{
		ResourceType: "session",
	}
}

func (s SessionRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.StorageID())
}

func (s *SessionRef) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	*s = SessionFromStored(id)
	return nil
}
