package stomp

// Command is one of the fifteen STOMP 1.2 commands. The wire spelling is
// exact — STOMP is case-sensitive.
type Command string

const (
	CmdSTOMP       Command = "STOMP"
	CmdCONNECT     Command = "CONNECT"
	CmdCONNECTED   Command = "CONNECTED"
	CmdSEND        Command = "SEND"
	CmdSUBSCRIBE   Command = "SUBSCRIBE"
	CmdUNSUBSCRIBE Command = "UNSUBSCRIBE"
	CmdACK         Command = "ACK"
	CmdNACK        Command = "NACK"
	CmdDISCONNECT  Command = "DISCONNECT"
	CmdMESSAGE     Command = "MESSAGE"
	CmdRECEIPT     Command = "RECEIPT"
	CmdERROR       Command = "ERROR"
	CmdBEGIN       Command = "BEGIN"
	CmdCOMMIT      Command = "COMMIT"
	CmdABORT       Command = "ABORT"
)

var knownCommands = map[Command]bool{
	CmdSTOMP:       true,
	CmdCONNECT:     true,
	CmdCONNECTED:   true,
	CmdSEND:        true,
	CmdSUBSCRIBE:   true,
	CmdUNSUBSCRIBE: true,
	CmdACK:         true,
	CmdNACK:        true,
	CmdDISCONNECT:  true,
	CmdMESSAGE:     true,
	CmdRECEIPT:     true,
	CmdERROR:       true,
	CmdBEGIN:       true,
	CmdCOMMIT:      true,
	CmdABORT:       true,
}

// requiredHeaders lists the headers a command must carry. Commands not
// present in this map require nothing beyond what bodyAllowed dictates.
var requiredHeaders = map[Command][]HeaderKey{
	CmdSTOMP:       {HeaderAcceptVersion, HeaderHost},
	CmdCONNECT:     {HeaderAcceptVersion, HeaderHost},
	CmdCONNECTED:   {HeaderVersion},
	CmdSEND:        {HeaderDestination},
	CmdSUBSCRIBE:   {HeaderDestination, HeaderID},
	CmdUNSUBSCRIBE: {HeaderID},
	CmdACK:         {HeaderID},
	CmdNACK:        {HeaderID},
	CmdMESSAGE:     {HeaderDestination, HeaderMessageID, HeaderSubscription},
	CmdRECEIPT:     {HeaderReceiptID},
	CmdBEGIN:       {HeaderTransaction},
	CmdCOMMIT:      {HeaderTransaction},
	CmdABORT:       {HeaderTransaction},
}

// bodyAllowed is the set of commands that may carry a non-empty body.
var bodyAllowed = map[Command]bool{
	CmdSEND:    true,
	CmdMESSAGE: true,
	CmdERROR:   true,
}
