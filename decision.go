package kws

import (
	"errors"
	"fmt"
)

// ErrScoreCount is returned when a score vector holds fewer than NumCommands scores.
var ErrScoreCount = errors.New("score vector shorter than the number of commands")

// Class is a spoken command. Its value is the index in the score vector and
// in the output-line assignment.
type Class int

const (
	Forward Class = iota
	Back
	Right
	Left
)

var (
	classNames  = [NumCommands]string{"forward", "back", "right", "left"}
	classLabels = [NumCommands]string{"adelante", "atras", "derecha", "izquierda"}
)

func (c Class) valid() bool { return c >= 0 && int(c) < NumCommands }

func (c Class) String() string {
	if !c.valid() {
		return fmt.Sprintf("Class(%d)", int(c))
	}
	return classNames[c]
}

// Label returns the word the model was trained on for c.
func (c Class) Label() string {
	if !c.valid() {
		return ""
	}
	return classLabels[c]
}

// Decision is the command chosen for one frame.
type Decision struct {
	Class Class
	Score float32
}

// Decide returns the arg-max of the first NumCommands scores. A later score
// must be strictly greater to replace the current maximum, so on ties the
// lowest index wins. Any scores past NumCommands are ignored.
func Decide(scores []float32) (Decision, error) {
	if len(scores) < NumCommands {
		return Decision{}, fmt.Errorf("%w: got %d", ErrScoreCount, len(scores))
	}
	d := Decision{Class: 0, Score: scores[0]}
	for i := 1; i < NumCommands; i++ {
		if scores[i] > d.Score {
			d = Decision{Class: Class(i), Score: scores[i]}
		}
	}
	return d, nil
}
