package treewalk

import (
	"fmt"
	"strings"
)

// Status is the outcome of a single walker step.
// The four step outcomes are power-of-two flags,
// so a Status can also be used as a mask to select a set of outcomes.
//
//	First | Next -> Enter
//	Leaf  | Last -> Exit
type Status uint8

const (
	// None means that no step was taken yet, or that the traversal is exhausted.
	None Status = 0
	// First is the entry into a node found as the first child of the previous node.
	First Status = 1
	// Next is the entry into a node found as the next sibling of a just exited node.
	Next Status = 2
	// Leaf is the exit of a node that had no children at all.
	Leaf Status = 4
	// Last is the exit of a node after its children were exhausted.
	Last Status = 8

	// Enter groups the steps where a node was just entered.
	Enter = First | Next
	// Exit groups the steps where a node was just exited.
	Exit = Leaf | Last
)

// Is reports whether the Status has any flag in common with the mask.
func (s Status) Is(mask Status) bool { return s&mask != 0 }

var statusNames = map[Status]string{
	None:  "none",
	First: "first",
	Next:  "next",
	Leaf:  "leaf",
	Last:  "last",
	Enter: "enter",
	Exit:  "exit",
}

const allStatus = Enter | Exit

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	if s&^allStatus != 0 {
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
	var names []string
	for _, group := range []Status{Enter, Exit} {
		if s&group == group {
			names = append(names, statusNames[group])
			s &^= group
		}
	}
	for _, flag := range []Status{First, Next, Leaf, Last} {
		if s&flag != 0 {
			names = append(names, statusNames[flag])
		}
	}
	return strings.Join(names, "|")
}

// ParseStatus parses the textual form of a Status mask.
// Names are case-insensitive and can be combined with "|" or ",".
//
//	ParseStatus("enter|leaf") == Enter | Leaf
func ParseStatus(raw string) (Status, error) {
	var status Status
	for _, part := range strings.FieldsFunc(raw, isStatusSeparator) {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		flag, ok := statusByName[name]
		if !ok {
			return None, ErrUnknownStatus.F("%q", name)
		}
		status |= flag
	}
	return status, nil
}

var statusByName = func() map[string]Status {
	m := make(map[string]Status, len(statusNames))
	for status, name := range statusNames {
		m[name] = status
	}
	return m
}()

func isStatusSeparator(r rune) bool { return r == '|' || r == ',' }
