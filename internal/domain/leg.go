package domain

import (
	"fmt"
	"strings"
)

// Kind of reference point a leg starts or ends at.
type StopKind int

const (
	StopBuffer StopKind = iota
	StopQC
	StopYard
)

func (s StopKind) String() string {
	switch s {
	case StopBuffer:
		return "buffer"
	case StopQC:
		return "qc"
	case StopYard:
		return "yard"
	default:
		return fmt.Sprintf("stop(%d)", int(s))
	}
}

// One truck movement between two reference regions.
type LegType int

const (
	BufferToQC LegType = iota
	QCToBuffer
	BufferToYard
	YardToBuffer
)

// AllLegTypes lists the leg types in their canonical order.
var AllLegTypes = []LegType{BufferToQC, QCToBuffer, BufferToYard, YardToBuffer}

func (l LegType) String() string {
	switch l {
	case BufferToQC:
		return "buffer_to_qc"
	case QCToBuffer:
		return "qc_to_buffer"
	case BufferToYard:
		return "buffer_to_yard"
	case YardToBuffer:
		return "yard_to_buffer"
	default:
		return fmt.Sprintf("leg(%d)", int(l))
	}
}

// From returns the stop kind the leg departs from.
func (l LegType) From() StopKind {
	switch l {
	case QCToBuffer:
		return StopQC
	case YardToBuffer:
		return StopYard
	default:
		return StopBuffer
	}
}

// To returns the stop kind the leg arrives at.
func (l LegType) To() StopKind {
	switch l {
	case BufferToQC:
		return StopQC
	case BufferToYard:
		return StopYard
	default:
		return StopBuffer
	}
}

// ParseLegType accepts the snake_case names produced by String.
func ParseLegType(s string) (LegType, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	for _, l := range AllLegTypes {
		if l.String() == norm {
			return l, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown leg type %q", ErrInputValidation, s)
}

func (l LegType) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

func (l *LegType) UnmarshalText(b []byte) error {
	v, err := ParseLegType(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}
