package domain

// ItemStatus is the lifecycle state of a flash item.
type ItemStatus string

const (
	ItemStatusDraft     ItemStatus = "DRAFT"
	ItemStatusPublished ItemStatus = "PUBLISHED"
	ItemStatusOnline    ItemStatus = "ONLINE"
	ItemStatusOffline   ItemStatus = "OFFLINE"
)

// Valid reports whether s is one of the known statuses.
func (s ItemStatus) Valid() bool {
	switch s {
	case ItemStatusDraft, ItemStatusPublished, ItemStatusOnline, ItemStatusOffline:
		return true
	}
	return false
}

// Action is an operator or scheduler request that moves an item between statuses.
type Action string

const (
	ActionPublish Action = "publish"
	ActionOnline  Action = "online"
	ActionOffline Action = "offline"
)

// Transition is one allowed edge of the lifecycle: Action moves an item from Src to Dst.
type Transition struct {
	Action Action
	Src    ItemStatus
	Dst    ItemStatus
}

// Transitions lists every allowed status change. Nothing leads back to DRAFT.
var Transitions = []Transition{
	{Action: ActionPublish, Src: ItemStatusDraft, Dst: ItemStatusPublished},
	{Action: ActionOnline, Src: ItemStatusPublished, Dst: ItemStatusOnline},
	{Action: ActionOnline, Src: ItemStatusOffline, Dst: ItemStatusOnline},
	{Action: ActionOffline, Src: ItemStatusPublished, Dst: ItemStatusOffline},
	{Action: ActionOffline, Src: ItemStatusOnline, Dst: ItemStatusOffline},
}

// Target returns the status an action leads to.
func (a Action) Target() ItemStatus {
	switch a {
	case ActionPublish:
		return ItemStatusPublished
	case ActionOnline:
		return ItemStatusOnline
	case ActionOffline:
		return ItemStatusOffline
	}
	return ""
}

// NextStatus resolves action against the current status. noop is true when the item is
// already in the target status. ErrInvalidTransition is returned for edges not in Transitions.
func NextStatus(current ItemStatus, action Action) (next ItemStatus, noop bool, err error) {
	if current == "" {
		current = ItemStatusDraft
	}
	if current == action.Target() {
		return current, true, nil
	}
	for _, t := range Transitions {
		if t.Action == action && t.Src == current {
			return t.Dst, false, nil
		}
	}
	return current, false, ErrInvalidTransition
}
