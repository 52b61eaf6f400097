package domain

// SubmissionRequest is the inbound JSON body: the form fields plus whatever
// client context the browser managed to collect. Every context field is optional.
type SubmissionRequest struct {
	ContactSubmission
	DeviceType string `json:"device_type,omitempty"`
	UserAgent  string `json:"user_agent,omitempty"`
	IPAddress  string `json:"ip_address,omitempty"`
	Region     string `json:"region,omitempty"`
	City       string `json:"city,omitempty"`
	Country    string `json:"country,omitempty"`
}

// Supplied returns the client-provided context. Blank fields are left nil/empty
// so the merge treats them as absent.
func (r SubmissionRequest) Supplied() ClientContext {
	c := ClientContext{
		UserAgent: StringPtr(r.UserAgent),
		IPAddress: StringPtr(r.IPAddress),
		Region:    StringPtr(r.Region),
		City:      StringPtr(r.City),
	}
	if dt := DeviceType(r.DeviceType); dt != "" {
		c.DeviceType = dt
	}
	if p := StringPtr(r.Country); p != nil {
		c.Country = *p
	}
	return c
}
