package service

// ClientError 用户输入导致的预期错误，Reason 原样返回给客户端
type ClientError struct {
	Reason string
}

func (e *ClientError) Error() string { return e.Reason }

var (
	ErrIDNotFound         = &ClientError{Reason: "Id not found"}
	ErrUsernameNotFound   = &ClientError{Reason: "Username not found"}
	ErrAlreadyFollowing   = &ClientError{Reason: "Already following"}
	ErrNotFollowing       = &ClientError{Reason: "Not following"}
	ErrPageNotAllowed     = &ClientError{Reason: "Page number not allowed"}
	ErrFollowSelf         = &ClientError{Reason: "Cannot follow yourself"}
	ErrInvalidGlasses     = &ClientError{Reason: "Glasses must be a positive number"}
	ErrUsernameTaken      = &ClientError{Reason: "Username already registered"}
	ErrInvalidCredentials = &ClientError{Reason: "Incorrect username or password"}
	ErrPasswordTooLong    = &ClientError{Reason: "Password must be at most 72 bytes"}
)
