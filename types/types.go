package types

// ---- Common service state (retained) ----

// Level of a service's lifecycle.
type Level string

const (
	LevelIdle        Level = "idle"
	LevelReady       Level = "ready"
	LevelUnavailable Level = "unavailable"
	LevelStopped     Level = "stopped"
)

// ---- Replies ----

// OKReply is the reply to a control request that carries no data.
type OKReply struct {
	OK bool `json:"ok" yaml:"ok"`
}

// ErrorReply carries a stable errcode string plus optional detail.
type ErrorReply struct {
	OK     bool   `json:"ok" yaml:"ok"`
	Error  string `json:"error" yaml:"error"`
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}
