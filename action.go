package tmi

// ActionKind identifies what unit of work an Action represents. Using an
// exhaustive enum (rather than e.g. an interface per action) lets dispatch
// tables be plain maps keyed by kind, and lets the compiler flag a switch
// that forgets to handle one.
type ActionKind int

const (
	ActionLogIn ActionKind = iota
	ActionRequestCaps
	ActionAwaitMotd
	ActionLogOut
	ActionProcessReceivedData
	ActionServerDisconnected
	ActionJoin
	ActionLeave
	ActionSendMessage
	ActionSendWhisper
)

func (k ActionKind) String() string {
	switch k {
	case ActionLogIn:
		return "LogIn"
	case ActionRequestCaps:
		return "RequestCaps"
	case ActionAwaitMotd:
		return "AwaitMotd"
	case ActionLogOut:
		return "LogOut"
	case ActionProcessReceivedData:
		return "ProcessReceivedData"
	case ActionServerDisconnected:
		return "ServerDisconnected"
	case ActionJoin:
		return "Join"
	case ActionLeave:
		return "Leave"
	case ActionSendMessage:
		return "SendMessage"
	case ActionSendWhisper:
		return "SendWhisper"
	default:
		return "Unknown"
	}
}

// Action is a tagged unit of work processed by the worker: either a
// caller-submitted command or an internally generated bookkeeping step
// (ProcessReceivedData, ServerDisconnected). Only the fields relevant to
// Kind are populated.
type Action struct {
	Kind ActionKind

	Nickname        string
	Token           string
	Message         string
	ParentMessageID string
	Channel         string
	ToUser          string
	Anonymous       bool

	// Expiration is an absolute clock time (Clock.Now()); HasExpiration is
	// false when no timeout is armed for this action (no Clock configured).
	Expiration    float64
	HasExpiration bool
}

// pendingTable is the worker-owned, strictly-ordered list of actions
// awaiting a server response or a timeout. Order of insertion is preserved;
// removal never reorders the remaining entries.
type pendingTable struct {
	actions []Action
}

func (p *pendingTable) add(a Action) {
	p.actions = append(p.actions, a)
}

// removeAt removes the action at index i, preserving the order of the rest.
func (p *pendingTable) removeAt(i int) {
	p.actions = append(p.actions[:i], p.actions[i+1:]...)
}

// removeKind removes (at most) the first pending action of the given kind
// and reports whether one was found.
func (p *pendingTable) removeKind(k ActionKind) bool {
	for i, a := range p.actions {
		if a.Kind == k {
			p.removeAt(i)
			return true
		}
	}
	return false
}

// hasKind reports whether a pending action of kind k is outstanding.
func (p *pendingTable) hasKind(k ActionKind) bool {
	for _, a := range p.actions {
		if a.Kind == k {
			return true
		}
	}
	return false
}

// retypeKind changes the first pending action of kind from into kind to,
// replacing its expiration. Used when a handshake phase completes and the
// pending bookkeeping entry advances to the next phase in place.
func (p *pendingTable) retypeKind(from, to ActionKind, expiration float64, hasExpiration bool) bool {
	for i := range p.actions {
		if p.actions[i].Kind == from {
			p.actions[i].Kind = to
			p.actions[i].Expiration = expiration
			p.actions[i].HasExpiration = hasExpiration
			return true
		}
	}
	return false
}

// expired returns the indexes (descending, so callers can remove in place)
// of actions whose expiration has passed now.
func (p *pendingTable) expired(now float64) []int {
	var idx []int
	for i := len(p.actions) - 1; i >= 0; i-- {
		a := p.actions[i]
		if a.HasExpiration && now >= a.Expiration {
			idx = append(idx, i)
		}
	}
	return idx
}

func (p *pendingTable) clear() {
	p.actions = nil
}
