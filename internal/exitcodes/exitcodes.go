package exitcodes

// Exit codes for del-files
// Declined or failed removals do not change the exit code
const (
	Success       = 0 // Successful execution
	InvalidConfig = 2 // Configuration, flags or profile invalid
	RuntimeError  = 4 // Traversal failure, closed prompt or interrupted run
)
