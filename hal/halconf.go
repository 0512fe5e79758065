package hal

// Driver selection. Resolved at build time like the rest of the board
// configuration.
const (
	halUsePWM    = true
	pwmUseCT16B1 = true

	// GPT drivers are provided outside this package through GPTD1/GPTD2.
	halUseGPT    = false
	gptUseCT16B0 = false
	gptUseCT16B1 = false

	// Write the RIS snapshot back to IC after dispatching callbacks.
	// Off by default: the match flags are left for Start/Stop to clear.
	pwmAckInISR = false
)

// NVIC priorities, 0 (highest) to 3 on the Cortex-M0.
const (
	PWMCT16B1IRQPriority = 3
	GPTCT16B0IRQPriority = 3
	GPTCT16B1IRQPriority = 3
)
