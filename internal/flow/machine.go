// Package flow implements the help request page flow as a finite state machine.
// The transition table is pure; Orchestrator executes its side effects.
package flow

import "fmt"

// State is a page of the help request flow
type State string

const (
	StateForm       State = "form"
	StateLoading    State = "loading"
	StateResults    State = "results"
	StateScheduling State = "scheduling"
	StateEmocional  State = "emocional"
	StateExito      State = "exito"
	StateAgendado   State = "agendado"
)

// Trigger is an event that moves the flow between states
type Trigger string

const (
	TriggerSubmit           Trigger = "submit"
	TriggerTriageEmotional  Trigger = "triageEmotional"
	TriggerTriageAcademic   Trigger = "triageAcademic"
	TriggerRequestRejected  Trigger = "requestRejected"
	TriggerSelectScheduled  Trigger = "selectScheduled"
	TriggerSelectDirect     Trigger = "selectDirect"
	TriggerSelectRejected   Trigger = "selectRejected"
	TriggerResultsBack      Trigger = "resultsBack"
	TriggerBookingConfirmed Trigger = "bookingConfirmed"
	TriggerSchedulingBack   Trigger = "schedulingBack"
	TriggerRestart          Trigger = "restart"
)

// Effect is a side effect the orchestrator performs while taking a transition
type Effect string

const (
	EffectRequestHelp      Effect = "requestHelp"
	EffectPersistHelp      Effect = "persistHelpRequestResult"
	EffectShowError        Effect = "showError"
	EffectSelectMentor     Effect = "selectMentor"
	EffectPersistSelection Effect = "persistSelectMentorResult"
	EffectPersistHandoff   Effect = "persistSchedulingData"
	EffectClearSession     Effect = "clearSessionKeys"
	EffectClearFlow        Effect = "clearFlowKeys"
	EffectClearScheduling  Effect = "clearSchedulingData"
	EffectRecordBooking    Effect = "recordBookingConfirmation"
)

// Transition is one row of the table
type Transition struct {
	From    State
	Trigger Trigger
	To      State
	Effects []Effect
}

// Has reports whether the transition carries effect e
func (t Transition) Has(e Effect) bool {
	for _, have := range t.Effects {
		if have == e {
			return true
		}
	}
	return false
}

// terminal states all accept restart
var terminals = []State{StateEmocional, StateExito, StateAgendado}

var table = buildTable()

func buildTable() map[State]map[Trigger]Transition {
	rows := []Transition{
		{From: StateForm, Trigger: TriggerSubmit, To: StateLoading, Effects: []Effect{EffectRequestHelp}},
		{From: StateLoading, Trigger: TriggerTriageEmotional, To: StateEmocional, Effects: []Effect{EffectClearSession, EffectPersistHelp}},
		{From: StateLoading, Trigger: TriggerTriageAcademic, To: StateResults, Effects: []Effect{EffectClearSession, EffectPersistHelp}},
		{From: StateLoading, Trigger: TriggerRequestRejected, To: StateForm, Effects: []Effect{EffectShowError}},
		{From: StateResults, Trigger: TriggerSelectScheduled, To: StateScheduling, Effects: []Effect{EffectSelectMentor, EffectPersistSelection, EffectPersistHandoff}},
		{From: StateResults, Trigger: TriggerSelectDirect, To: StateExito, Effects: []Effect{EffectSelectMentor, EffectPersistSelection}},
		{From: StateResults, Trigger: TriggerSelectRejected, To: StateResults, Effects: []Effect{EffectShowError}},
		{From: StateResults, Trigger: TriggerResultsBack, To: StateForm, Effects: []Effect{EffectClearSession}},
		{From: StateScheduling, Trigger: TriggerBookingConfirmed, To: StateAgendado, Effects: []Effect{EffectRecordBooking, EffectClearFlow}},
		{From: StateScheduling, Trigger: TriggerSchedulingBack, To: StateResults, Effects: []Effect{EffectClearScheduling}},
	}
	for _, s := range terminals {
		rows = append(rows, Transition{From: s, Trigger: TriggerRestart, To: StateForm, Effects: []Effect{EffectClearSession}})
	}

	t := make(map[State]map[Trigger]Transition)
	for _, row := range rows {
		if t[row.From] == nil {
			t[row.From] = make(map[Trigger]Transition)
		}
		t[row.From][row.Trigger] = row
	}
	return t
}

// Next looks up the transition for trigger in state from
func Next(from State, trigger Trigger) (Transition, error) {
	if tr, ok := table[from][trigger]; ok {
		return tr, nil
	}
	return Transition{}, fmt.Errorf("no transition from %s on %s", from, trigger)
}

var paths = map[State]string{
	StateForm:       "/",
	StateLoading:    "/",
	StateResults:    "/resultados",
	StateScheduling: "/agendar",
	StateEmocional:  "/resultado/emocional",
	StateExito:      "/resultado/exito",
	StateAgendado:   "/resultado/agendado",
}

// Path returns the canonical page path of a state
func Path(s State) string {
	if p, ok := paths[s]; ok {
		return p
	}
	return "/"
}
