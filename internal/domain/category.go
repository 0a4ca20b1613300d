package domain

// Category is an admin-managed listing category.
type Category struct {
	CategoryID  string `json:"id" dynamodbav:"category_id"`
	Name        string `json:"name" dynamodbav:"name"`
	Description string `json:"description" dynamodbav:"description"`
}

type CategoryInput struct {
	Name        string `json:"name" validate:"required,max=50"`
	Description string `json:"description" validate:"max=200"`
}
