package testutil

import "fmt"

// ScriptedAgent plays a fixed list of takes, one per call. Once the script
// runs out it keeps taking a single stick.
type ScriptedAgent struct {
	AgentName string
	Script    []int
	Seen      []int // piles passed to ChooseMove
	Wins      int
	Losses    int

	next int
}

// NewScriptedAgent creates a scripted agent
func NewScriptedAgent(name string, script ...int) *ScriptedAgent {
	return &ScriptedAgent{AgentName: name, Script: script}
}

func (s *ScriptedAgent) Name() string { return s.AgentName }

func (s *ScriptedAgent) ChooseMove(pile int) (int, error) {
	s.Seen = append(s.Seen, pile)
	if s.next >= len(s.Script) {
		return 1, nil
	}
	take := s.Script[s.next]
	s.next++
	return take, nil
}

func (s *ScriptedAgent) OnWin()  { s.Wins++ }
func (s *ScriptedAgent) OnLose() { s.Losses++ }

// FailingAgent returns Err from every ChooseMove call
type FailingAgent struct {
	AgentName string
	Err       error
}

func (f *FailingAgent) Name() string { return f.AgentName }

func (f *FailingAgent) ChooseMove(pile int) (int, error) {
	if f.Err == nil {
		return 0, fmt.Errorf("no move for pile %d", pile)
	}
	return 0, f.Err
}
