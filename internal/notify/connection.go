package notify

import "github.com/rs/zerolog"

// ConnectionWhat is the event name carried by ConnectionInfo.
type ConnectionWhat string

const (
	ConnectFailed         ConnectionWhat = "ConnectFailed"
	Connected             ConnectionWhat = "Connected"
	UUIDGot               ConnectionWhat = "UuidGot"
	UnsupportedResolution ConnectionWhat = "UnsupportedResolution"
	ResolutionError       ConnectionWhat = "ResolutionError"
	Reconnecting          ConnectionWhat = "Reconnecting"
	Reconnected           ConnectionWhat = "Reconnected"
	Disconnect            ConnectionWhat = "Disconnect"
	ScreencapFailed       ConnectionWhat = "ScreencapFailed"
	TouchModeNotAvailable ConnectionWhat = "TouchModeNotAvailable"
	ResolutionGot         ConnectionWhat = "ResolutionGot"
)

// Level returns the log level a connection event deserves. Unknown names are
// warnings.
func (w ConnectionWhat) Level() zerolog.Level {
	switch w {
	case ConnectFailed, UnsupportedResolution, ResolutionError, ScreencapFailed, TouchModeNotAvailable:
		return zerolog.ErrorLevel
	case Connected, UUIDGot:
		return zerolog.DebugLevel
	case Reconnecting, Reconnected, Disconnect, ResolutionGot:
		return zerolog.InfoLevel
	default:
		return zerolog.WarnLevel
	}
}

// ConnectionInfo reports a change of the device connection.
type ConnectionInfo struct {
	What    ConnectionWhat    `json:"what"`
	Why     string            `json:"why,omitempty"`
	UUID    string            `json:"uuid"`
	Details ConnectionDetails `json:"details"`
}

// ConnectionDetails identifies the device and, for ResolutionGot, its size.
type ConnectionDetails struct {
	Adb     string `json:"adb"`
	Address string `json:"address"`
	Config  string `json:"config"`
	Width   *int   `json:"width,omitempty"`
	Height  *int   `json:"height,omitempty"`
}

// DecodeConnectionInfo decodes a ConnectionInfo payload.
func DecodeConnectionInfo(raw []byte) (ConnectionInfo, error) {
	var info ConnectionInfo
	err := decode(raw, &info, "what", "uuid", "details.adb", "details.address", "details.config")
	return info, err
}
