package util

// Envelope is the JSON body shape for every local API response.
type Envelope map[string]any

// Error wraps a human-readable failure message.
func Error(message string) Envelope {
	return Envelope{"error": message}
}

// Data wraps one named payload value.
func Data(key string, value any) Envelope {
	return Envelope{key: value}
}
