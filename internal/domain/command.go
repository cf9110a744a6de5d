package domain

type CommandType string

const (
	CommandLookup  CommandType = "lookup"
	CommandHelp    CommandType = "help"
	CommandUnknown CommandType = "unknown"
)

func (c CommandType) String() string {
	return string(c)
}

func (c CommandType) IsValid() bool {
	switch c {
	case CommandLookup, CommandHelp, CommandUnknown:
		return true
	default:
		return false
	}
}

// ParseResult is one parsed input line.
type ParseResult struct {
	Command CommandType    `json:"command"`
	Params  map[string]any `json:"params"`
}
