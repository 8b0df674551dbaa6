package stomp

// HeaderKey is one of the header names the codec recognises. Any other
// name on the wire is rejected with UnrecognizedHeader.
type HeaderKey string

const (
	HeaderAcceptVersion HeaderKey = "accept-version"
	HeaderHost          HeaderKey = "host"
	HeaderLogin         HeaderKey = "login"
	HeaderPasscode      HeaderKey = "passcode"
	HeaderHeartBeat     HeaderKey = "heart-beat"
	HeaderVersion       HeaderKey = "version"
	HeaderSession       HeaderKey = "session"
	HeaderServer        HeaderKey = "server"
	HeaderDestination   HeaderKey = "destination"
	HeaderID            HeaderKey = "id"
	HeaderAck           HeaderKey = "ack"
	HeaderSubscription  HeaderKey = "subscription"
	HeaderMessageID     HeaderKey = "message-id"
	HeaderReceipt       HeaderKey = "receipt"
	HeaderReceiptID     HeaderKey = "receipt-id"
	HeaderContentLength HeaderKey = "content-length"
	HeaderContentType   HeaderKey = "content-type"
	HeaderMessage       HeaderKey = "message"
	HeaderTransaction   HeaderKey = "transaction"
)

var knownHeaders = map[HeaderKey]bool{
	HeaderAcceptVersion: true,
	HeaderHost:          true,
	HeaderLogin:         true,
	HeaderPasscode:      true,
	HeaderHeartBeat:     true,
	HeaderVersion:       true,
	HeaderSession:       true,
	HeaderServer:        true,
	HeaderDestination:   true,
	HeaderID:            true,
	HeaderAck:           true,
	HeaderSubscription:  true,
	HeaderMessageID:     true,
	HeaderReceipt:       true,
	HeaderReceiptID:     true,
	HeaderContentLength: true,
	HeaderContentType:   true,
	HeaderMessage:       true,
	HeaderTransaction:   true,
}

// Header is a single decoded header. Key and Value are slices into the
// Frame's backing buffer when produced by Parse.
type Header struct {
	Key   HeaderKey
	Value []byte
}

// NewHeader is a convenience constructor for building headers to pass to
// Build, where the value does not need to borrow from any buffer.
func NewHeader(key HeaderKey, value string) Header {
	return Header{Key: key, Value: []byte(value)}
}
