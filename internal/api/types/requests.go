package types

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ResetPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordConfirmRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

type ProjectCreateRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

type ProjectUpdateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type RoomQuantityRequest struct {
	Name     string `json:"name" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=0"`
}

type SaveRoomsRequest struct {
	ProjectID string                `json:"project_id" validate:"required,uuid4"`
	Rooms     []RoomQuantityRequest `json:"rooms" validate:"required,dive"`
}

type FloorCreateRequest struct {
	ProjectID string `json:"project_id" validate:"required,uuid4"`
	Name      string `json:"name"`
}

type InteriorCreateRequest struct {
	ProjectID string `json:"project_id" validate:"required,uuid4"`
	Name      string `json:"name"`
}

type RoomDesignRequest struct {
	Name  string `json:"name" validate:"required"`
	Color string `json:"color"`
	Style string `json:"style"`
}

type SaveRoomDesignsRequest struct {
	Rooms []RoomDesignRequest `json:"rooms" validate:"dive"`
}

type ExteriorCreateRequest struct {
	FacadeStyle string `json:"facade_style" validate:"required"`
	Material    string `json:"exterior_material" validate:"required"`
	LandSize    string `json:"land_size"`
	Prompt      string `json:"prompt"`
}

type ChatCreateRequest struct {
	Title string `json:"title"`
}

type ChatRenameRequest struct {
	Title string `json:"title" validate:"required"`
}

type UserRoleUpdateRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

type ChatBulkDeleteRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,uuid4"`
}

type SettingPutRequest struct {
	Value string `json:"value"`
}
