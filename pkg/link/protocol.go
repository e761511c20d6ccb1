package link

// Reserved tokens, kept in sync with the trainer firmware.
const (
	MsgPing      = "PING"
	MsgPong      = "PONG"
	MsgResetting = "RESETTING"
	MsgResetReq  = "RESET_ESP"

	MsgReadyPeer   = "TEENSY:READY"
	MsgReadyBridge = "ESP32:READY"

	PrefixStatus  = "STATUS:"
	PrefixStats   = "STATS:"
	PrefixDecoded = "DECODED:"
	PrefixCurrent = "CURRENT:"
)

// Limits of the protocol.
const (
	// DefaultLineCapacity is the max length of an inbound line.
	DefaultLineCapacity = 512
	// ReadChunkSize is the max number of bytes taken per read.
	ReadChunkSize = 512
	// MaxCommandLen is the max length of an outbound control command.
	MaxCommandLen = 256
	// LastCommandCap bounds the remembered last command.
	LastCommandCap = 63
	// MaxKeyLen and MaxValueLen bound key/value pairs in field lists.
	MaxKeyLen   = 15
	MaxValueLen = 31
)
