package pipeline

// Default values for expense extraction.
const (
	// DefaultModelName is the default Gemini model used for extraction.
	DefaultModelName = "gemini-2.5-flash"

	// ImageDescriptionPlaceholder is used when an image yields no description.
	ImageDescriptionPlaceholder = "Expense from image"

	// NoExpenseFoundDescription is what the image prompt asks the model to
	// return when a picture holds no expense.
	NoExpenseFoundDescription = "No expense information found"

	// MinAmount is the smallest amount that survives storage at two decimals.
	MinAmount = 0.005

	// DateLayout is the only date layout accepted from the model.
	DateLayout = "2006-01-02"
)
