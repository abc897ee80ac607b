package models

// GarmentAssessment is the structured result of the optional AI image
// analysis used to pre-fill booking fields. It never blocks manual booking.
type GarmentAssessment struct {
	GarmentType      string   `json:"garmentType"`
	Fabric           string   `json:"fabric,omitempty"`
	Stains           []string `json:"stains,omitempty"`
	SuggestedService string   `json:"suggestedService,omitempty"`
	Confidence       float64  `json:"confidence"`
}

// AnalyzeRequest carries the image to classify, base64-encoded.
type AnalyzeRequest struct {
	Image string `json:"image" validate:"required"`
}

// ContactRequest is the public contact-form submission.
type ContactRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone,omitempty"`
	Message string `json:"message" validate:"required"`
}
