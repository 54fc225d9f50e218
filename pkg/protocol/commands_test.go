package protocol

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSimulationModeCommand(t *testing.T) {
	assert.Equal(t, "CMD,1026,SIM,ENABLE;", SimulationModeCommand(true))
	assert.Equal(t, "CMD,1026,SIM,DISABLE;", SimulationModeCommand(false))
}

func TestSimulationActivateCommand(t *testing.T) {
	assert.Equal(t, "CMD,1026,SIM,ACTIVATE;", SimulationActivateCommand())
}

func TestContainerTelemetryCommand(t *testing.T) {
	assert.Equal(t, "CMD,1026,CX,ON;", ContainerTelemetryCommand(true))
	assert.Equal(t, "CMD,1026,CX,OFF;", ContainerTelemetryCommand(false))
}

func TestTimeSyncCommand(t *testing.T) {
	at := time.Date(2022, 6, 9, 14, 5, 3, 0, time.UTC)
	assert.Equal(t, "CMD,1026,ST,14:05:03;", TimeSyncCommand(at))
}

func TestSimulatedPressureCommand(t *testing.T) {
	assert.Equal(t, "CMD,1026,SIMP,101325;", SimulatedPressureCommand("101325"))
}

func TestTitleForTag(t *testing.T) {
	assert.Equal(t, TitleContainer, TitleForTag(TagContainer))
	assert.Equal(t, TitlePayload, TitleForTag(TagPayload))
	assert.Equal(t, "", TitleForTag("9999"))
}
