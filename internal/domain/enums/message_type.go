package enums

type MessageType string

const (
	MessageTypeText  MessageType = "text"
	MessageTypeImage MessageType = "image"
)

func (t MessageType) Valid() bool {
	return t == MessageTypeText || t == MessageTypeImage
}
