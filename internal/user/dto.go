package user

type SetActiveDTO struct {
	IsActive *bool `json:"is_active" validate:"required"`
}
