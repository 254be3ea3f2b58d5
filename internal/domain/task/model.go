package task

import "encoding/json"

// knownFields lists the metadata keys with first-class Go representation.
// Everything else round-trips through Extra.
var knownFields = map[string]bool{
	"task_id":    true,
	"created_at": true,
	"updated_at": true,
	"tags":       true,
	"assignee":   true,
	"priority":   true,
	"due_date":   true,
}

// Metadata is the in-memory, typed view of a task's metadata record.
// title and status are intentionally absent: both are derived (from
// task_id and from the record's containing status directory,
// respectively) and must never be persisted here.
type Metadata struct {
	TaskID    string
	CreatedAt string
	UpdatedAt string
	Tags      []string
	Assignee  *string
	Priority  *string
	DueDate   *string
	// Extra holds forward-compatible keys set via meta-update's "set"
	// that this version of the schema doesn't know about by name.
	Extra map[string]any
}

// MetadataFromMap builds a Metadata from a raw decoded JSON object,
// tolerating missing or wrongly-typed known fields (the integrity
// checker is responsible for flagging those; this constructor just
// avoids panicking on them).
func MetadataFromMap(m map[string]any) Metadata {
	out := Metadata{Extra: map[string]any{}}
	if v, ok := m["task_id"].(string); ok {
		out.TaskID = v
	}
	if v, ok := m["created_at"].(string); ok {
		out.CreatedAt = v
	}
	if v, ok := m["updated_at"].(string); ok {
		out.UpdatedAt = v
	}
	if v, ok := m["tags"].([]any); ok {
		tags := make([]string, 0, len(v))
		for _, t := range v {
			if s, ok := t.(string); ok {
				tags = append(tags, s)
			}
		}
		out.Tags = tags
	}
	if v, ok := m["assignee"].(string); ok {
		out.Assignee = &v
	}
	if v, ok := m["priority"].(string); ok {
		out.Priority = &v
	}
	if v, ok := m["due_date"].(string); ok {
		out.DueDate = &v
	}
	for k, v := range m {
		if !knownFields[k] {
			out.Extra[k] = v
		}
	}
	return out
}

// ToMap renders Metadata back into a JSON-object shape, merging in Extra.
// Optional fields are omitted entirely when unset, matching the spec's
// "missing key means absent" semantics.
func (m Metadata) ToMap() map[string]any {
	out := make(map[string]any, 4+len(m.Extra))
	out["task_id"] = m.TaskID
	out["created_at"] = m.CreatedAt
	out["updated_at"] = m.UpdatedAt
	if len(m.Tags) > 0 {
		out["tags"] = m.Tags
	}
	if m.Assignee != nil {
		out["assignee"] = *m.Assignee
	}
	if m.Priority != nil {
		out["priority"] = *m.Priority
	}
	if m.DueDate != nil {
		out["due_date"] = *m.DueDate
	}
	for k, v := range m.Extra {
		out[k] = v
	}
	return out
}

// MarshalJSON serializes through ToMap so encoding/json's natural
// alphabetical key ordering for maps gives us the deterministic,
// sorted-key output the spec requires.
func (m Metadata) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.ToMap())
}

func (m *Metadata) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = MetadataFromMap(raw)
	return nil
}

// RawIndex is the per-status index exactly as read off disk: a mapping
// from task_id to whatever JSON value occupies that slot. Most entries
// are objects (map[string]any), but the integrity checker must also
// tolerate the malformed case (string, number, array, null) described in
// spec §4.H phase 3.
type RawIndex map[string]any

// Index is the well-formed, typed view used once a RawIndex has passed
// (or been repaired to pass) the integrity checker.
type Index map[string]Metadata

// ToRaw converts a typed Index back to the raw on-disk shape for writing.
func (idx Index) ToRaw() RawIndex {
	out := make(RawIndex, len(idx))
	for k, v := range idx {
		out[k] = v.ToMap()
	}
	return out
}

// Transaction is the `.tx_move.json` sentinel file describing a pending
// move.
type Transaction struct {
	Op           string   `json:"op"`
	TaskID       string   `json:"task_id"`
	From         string   `json:"from"`
	To           string   `json:"to"`
	UpdatedMeta  Metadata `json:"updated_meta"`
}

// LockRecord is the `.lock` file payload.
type LockRecord struct {
	PID int `json:"pid"`
}
