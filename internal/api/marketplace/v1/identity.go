package marketplacepb

type ProviderListing struct {
	Id           string `json:"id"`
	DisplayName  string `json:"display_name"`
	ServiceTitle string `json:"service_title"`
	ServiceRate  string `json:"service_rate"`
	Description  string `json:"description,omitempty"`
}

type User struct {
	Id           string           `json:"id"`
	Email        string           `json:"email"`
	DisplayName  string           `json:"display_name"`
	ContactPhone string           `json:"contact_phone,omitempty"`
	RoleCode     string           `json:"role_code,omitempty"`
	Listing      *ProviderListing `json:"listing,omitempty"`
}

type RegisterUserRequest struct {
	Email        string `json:"email"`
	DisplayName  string `json:"display_name"`
	ContactPhone string `json:"contact_phone,omitempty"`
	RoleCode     string `json:"role_code,omitempty"`
}

func (x *RegisterUserRequest) GetEmail() string {
	if x != nil {
		return x.Email
	}
	return ""
}

func (x *RegisterUserRequest) GetDisplayName() string {
	if x != nil {
		return x.DisplayName
	}
	return ""
}

func (x *RegisterUserRequest) GetContactPhone() string {
	if x != nil {
		return x.ContactPhone
	}
	return ""
}

func (x *RegisterUserRequest) GetRoleCode() string {
	if x != nil {
		return x.RoleCode
	}
	return ""
}

// SetRoleRequest: actor_id пустой означает смену собственной роли.
type SetRoleRequest struct {
	UserId   string `json:"user_id"`
	RoleCode string `json:"role_code"`
	ActorId  string `json:"actor_id,omitempty"`
}

func (x *SetRoleRequest) GetUserId() string {
	if x != nil {
		return x.UserId
	}
	return ""
}

func (x *SetRoleRequest) GetRoleCode() string {
	if x != nil {
		return x.RoleCode
	}
	return ""
}

func (x *SetRoleRequest) GetActorId() string {
	if x != nil {
		return x.ActorId
	}
	return ""
}

// GetProfileRequest: поиск по id или по email (что задано).
type GetProfileRequest struct {
	UserId string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
}

func (x *GetProfileRequest) GetUserId() string {
	if x != nil {
		return x.UserId
	}
	return ""
}

func (x *GetProfileRequest) GetEmail() string {
	if x != nil {
		return x.Email
	}
	return ""
}

type UpsertListingRequest struct {
	UserId       string `json:"user_id"`
	ServiceTitle string `json:"service_title"`
	ServiceRate  string `json:"service_rate"`
	Description  string `json:"description,omitempty"`
}

func (x *UpsertListingRequest) GetUserId() string {
	if x != nil {
		return x.UserId
	}
	return ""
}

func (x *UpsertListingRequest) GetServiceTitle() string {
	if x != nil {
		return x.ServiceTitle
	}
	return ""
}

func (x *UpsertListingRequest) GetServiceRate() string {
	if x != nil {
		return x.ServiceRate
	}
	return ""
}

func (x *UpsertListingRequest) GetDescription() string {
	if x != nil {
		return x.Description
	}
	return ""
}

type UserResponse struct {
	User *User `json:"user"`
}

func (x *UserResponse) GetUser() *User {
	if x != nil {
		return x.User
	}
	return nil
}

type ListingResponse struct {
	Listing *ProviderListing `json:"listing"`
}
