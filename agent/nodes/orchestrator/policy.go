package orchestratornode

const (
	DefaultMaxIterations = 8
	FallbackReply        = "I could not process that request."
)

func resolveMaxIterations(n int) int {
	if n <= 0 {
		return DefaultMaxIterations
	}
	return n
}
