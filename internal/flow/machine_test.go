package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNext_Table(t *testing.T) {
	tests := []struct {
		from    State
		trigger Trigger
		to      State
		effects []Effect
	}{
		{StateForm, TriggerSubmit, StateLoading, []Effect{EffectRequestHelp}},
		{StateLoading, TriggerTriageEmotional, StateEmocional, []Effect{EffectClearSession, EffectPersistHelp}},
		{StateLoading, TriggerTriageAcademic, StateResults, []Effect{EffectClearSession, EffectPersistHelp}},
		{StateLoading, TriggerRequestRejected, StateForm, []Effect{EffectShowError}},
		{StateResults, TriggerSelectScheduled, StateScheduling, []Effect{EffectSelectMentor, EffectPersistSelection, EffectPersistHandoff}},
		{StateResults, TriggerSelectDirect, StateExito, []Effect{EffectSelectMentor, EffectPersistSelection}},
		{StateResults, TriggerSelectRejected, StateResults, []Effect{EffectShowError}},
		{StateResults, TriggerResultsBack, StateForm, []Effect{EffectClearSession}},
		{StateScheduling, TriggerBookingConfirmed, StateAgendado, []Effect{EffectRecordBooking, EffectClearFlow}},
		{StateScheduling, TriggerSchedulingBack, StateResults, []Effect{EffectClearScheduling}},
		{StateEmocional, TriggerRestart, StateForm, []Effect{EffectClearSession}},
		{StateExito, TriggerRestart, StateForm, []Effect{EffectClearSession}},
		{StateAgendado, TriggerRestart, StateForm, []Effect{EffectClearSession}},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"/"+string(tt.trigger), func(t *testing.T) {
			tr, err := Next(tt.from, tt.trigger)
			require.NoError(t, err)
			assert.Equal(t, tt.to, tr.To)
			assert.Equal(t, tt.effects, tr.Effects)
		})
	}
}

func TestNext_RejectsUnknownTransitions(t *testing.T) {
	for _, c := range []struct {
		from    State
		trigger Trigger
	}{
		{StateForm, TriggerSelectDirect},
		{StateResults, TriggerRestart},
		{StateScheduling, TriggerSubmit},
		{StateAgendado, TriggerBookingConfirmed},
	} {
		_, err := Next(c.from, c.trigger)
		assert.Error(t, err, "%s on %s", c.from, c.trigger)
	}
}

func TestTransition_Has(t *testing.T) {
	tr, err := Next(StateResults, TriggerSelectDirect)
	require.NoError(t, err)
	assert.True(t, tr.Has(EffectPersistSelection))
	assert.False(t, tr.Has(EffectPersistHandoff))
}

func TestPath(t *testing.T) {
	assert.Equal(t, "/", Path(StateForm))
	assert.Equal(t, "/", Path(StateLoading))
	assert.Equal(t, "/resultados", Path(StateResults))
	assert.Equal(t, "/agendar", Path(StateScheduling))
	assert.Equal(t, "/resultado/emocional", Path(StateEmocional))
	assert.Equal(t, "/resultado/exito", Path(StateExito))
	assert.Equal(t, "/resultado/agendado", Path(StateAgendado))
	assert.Equal(t, "/", Path(State("unknown")))
}

func TestTerminalStatesAllReturnHome(t *testing.T) {
	for _, s := range terminals {
		tr, err := Next(s, TriggerRestart)
		require.NoError(t, err)
		assert.Equal(t, "/", Path(tr.To))
	}
}
