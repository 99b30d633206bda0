package ai

import "github.com/Rim-SeungJae/eternal-survival/internal/model"

// Controller drives one actor. All methods are called from the tick goroutine.
type Controller interface {
	// Start is called once when the controller is registered
	Start()

	// Stop is called once when the controller is unregistered
	Stop()

	// Intention returns what the actor is currently doing
	Intention() model.Intention

	// Tick advances the actor by dt seconds of simulated time
	Tick(dt float64)
}
