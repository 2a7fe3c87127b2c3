package notify

// TitleFor returns the default title for a kind. Caller-supplied titles
// always win over these.
func TitleFor(kind Kind) string {
	switch kind {
	case KindSchema:
		return "Invalid input"
	case KindCreateFail:
		return "WLP-AUTH-301"
	case KindAuthFail:
		return "Authentication failed"
	case KindEmailExists:
		return "Email already registered"
	case KindAPIFail:
		return "Server error"
	case KindNetwork:
		// Normally unused: NETWORK is routed to the offline surface.
		return "You are offline"
	default:
		return "Something went wrong"
	}
}

// MessageFor returns the fixed user-readable body for a kind. Only UNKNOWN
// consults the fallback; the other kinds have one canonical sentence each.
func MessageFor(kind Kind, fallback string) string {
	switch kind {
	case KindNetwork:
		return "Cannot reach the network. Check your connection and browser or proxy settings."
	case KindSchema:
		return "The input is not in the expected format. Check the reported fields."
	case KindCreateFail:
		return "Sign-up failed. Please wait a moment and try again."
	case KindAuthFail:
		return "Authentication failed. Check your email and password."
	case KindEmailExists:
		return "This email address is already registered. Try signing in instead."
	case KindAPIFail:
		return "Could not fetch data from the server. Please try again later."
	default:
		if fallback != "" {
			return fallback
		}
		return "An unexpected error occurred."
	}
}
