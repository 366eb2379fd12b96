package ipc

type CommandType string

const (
	CommandStop    CommandType = "stop"
	CommandNext    CommandType = "next"
	CommandTrigger CommandType = "trigger"
	CommandLoad    CommandType = "load"
	CommandStatus  CommandType = "status"
)

type Command struct {
	Type CommandType `json:"type"`
	Args []string    `json:"args"`
}

type ManagerInterface interface {
	CurrentImage() string
	ActiveEffect() string
	Outputs() []string
	EnqueueCommand(Command)
}

type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

type StatusResponse struct {
	Status       string   `json:"status"`
	Message      string   `json:"message"`
	Version      string   `json:"version"`
	PID          int      `json:"pid"`
	Socket       string   `json:"socket"`
	Config       string   `json:"config"`
	CurrentImage string   `json:"current_image"`
	ActiveEffect string   `json:"active_effect"`
	Outputs      []string `json:"outputs"`
}
