package health

// Input represents the input for health check endpoint
type Input struct{}

// Output represents the output for health check endpoint
type Output struct {
	Body Response
}

// Response represents the health check response
type Response struct {
	Status       string `json:"status" example:"OK" doc:"Health status of the agent"`
	Connectivity string `json:"connectivity" enum:"online,offline,server_unreachable" doc:"Reachability of the remote API"`
	Syncing      bool   `json:"syncing" doc:"Whether a sync cycle is running"`
}
