package errors

import "net/http"

// Code represents an error code with HTTP status and message
type Code struct {
	Code    int    // Business error code
	Status  int    // HTTP status code
	Message string // Error message
}

// Error codes for different modules
const (
	// Success
	Success = 0

	// Common errors (1000-1999)
	ErrInternalServer  = 1000
	ErrInvalidParams   = 1001
	ErrNotFound        = 1002
	ErrUnauthorized    = 1003
	ErrForbidden       = 1004
	ErrConflict        = 1005
	ErrTooManyRequests = 1006
	ErrBadRequest      = 1007
	ErrServiceUnavail  = 1008

	// Auth errors (2000-2999)
	ErrAuthInvalidCredentials = 2000
	ErrAuthInvalidToken       = 2001
	ErrAuthEmailNotVerified   = 2002
	ErrAuthCodeExpired        = 2003
	ErrAuthCodeMismatch       = 2004
	ErrAuthCodeNotRequested   = 2005
	ErrAuthMailFailed         = 2006
	ErrAuthAccountBlocked     = 2007

	// User errors (3000-3999)
	ErrUserNotFound      = 3000
	ErrUserIDExists      = 3001
	ErrUserNicknameTaken = 3002
	ErrUserEmailTaken    = 3003
	ErrUserWrongPassword = 3004
	ErrUserInvalidImage  = 3005

	// Video errors (4000-4999)
	ErrVideoNotFound       = 4000
	ErrVideoForbidden      = 4001
	ErrVideoFileMissing    = 4002
	ErrVideoInvalidAction  = 4003
	ErrVideoStorageFailed  = 4004
	ErrVideoInvalidRequest = 4005

	// Finding errors (5000-5999)
	ErrFindingEmptyPrompt = 5000

	// Admin errors (6000-6999)
	ErrAdminNotFound = 6000
)

// codeMap maps error codes to their details
var codeMap = map[int]Code{
	Success: {Success, http.StatusOK, "Success"},

	// Common errors
	ErrInternalServer:  {ErrInternalServer, http.StatusInternalServerError, "서버 내부 오류가 발생했습니다."},
	ErrInvalidParams:   {ErrInvalidParams, http.StatusBadRequest, "요청 값이 올바르지 않습니다."},
	ErrNotFound:        {ErrNotFound, http.StatusNotFound, "요청한 리소스를 찾을 수 없습니다."},
	ErrUnauthorized:    {ErrUnauthorized, http.StatusUnauthorized, "인증이 필요합니다."},
	ErrForbidden:       {ErrForbidden, http.StatusForbidden, "접근 권한이 없습니다."},
	ErrConflict:        {ErrConflict, http.StatusConflict, "이미 존재하는 리소스입니다."},
	ErrTooManyRequests: {ErrTooManyRequests, http.StatusTooManyRequests, "요청이 너무 많습니다. 잠시 후 다시 시도해 주세요."},
	ErrBadRequest:      {ErrBadRequest, http.StatusBadRequest, "잘못된 요청입니다."},
	ErrServiceUnavail:  {ErrServiceUnavail, http.StatusServiceUnavailable, "서비스를 사용할 수 없습니다."},

	// Auth errors
	ErrAuthInvalidCredentials: {ErrAuthInvalidCredentials, http.StatusBadRequest, "아이디 또는 비밀번호가 일치하지 않습니다."},
	ErrAuthInvalidToken:       {ErrAuthInvalidToken, http.StatusUnauthorized, "유효하지 않은 토큰입니다."},
	ErrAuthEmailNotVerified:   {ErrAuthEmailNotVerified, http.StatusBadRequest, "이메일 인증이 완료되지 않았습니다."},
	ErrAuthCodeExpired:        {ErrAuthCodeExpired, http.StatusBadRequest, "인증번호가 만료되었습니다. 다시 요청해 주세요."},
	ErrAuthCodeMismatch:       {ErrAuthCodeMismatch, http.StatusBadRequest, "인증번호가 올바르지 않습니다."},
	ErrAuthCodeNotRequested:   {ErrAuthCodeNotRequested, http.StatusBadRequest, "인증 요청 내역이 없습니다. 먼저 인증번호를 받아 주세요."},
	ErrAuthMailFailed:         {ErrAuthMailFailed, http.StatusInternalServerError, "인증 메일 전송에 실패했습니다. 잠시 후 다시 시도해 주세요."},
	ErrAuthAccountBlocked:     {ErrAuthAccountBlocked, http.StatusBadRequest, "차단된 계정입니다."},

	// User errors
	ErrUserNotFound:      {ErrUserNotFound, http.StatusBadRequest, "사용자를 찾을 수 없습니다."},
	ErrUserIDExists:      {ErrUserIDExists, http.StatusBadRequest, "이미 사용 중인 아이디입니다."},
	ErrUserNicknameTaken: {ErrUserNicknameTaken, http.StatusBadRequest, "이미 사용 중인 닉네임입니다."},
	ErrUserEmailTaken:    {ErrUserEmailTaken, http.StatusBadRequest, "이미 사용 중인 이메일입니다."},
	ErrUserWrongPassword: {ErrUserWrongPassword, http.StatusBadRequest, "현재 비밀번호가 일치하지 않습니다."},
	ErrUserInvalidImage:  {ErrUserInvalidImage, http.StatusBadRequest, "지원하지 않는 프로필 이미지입니다."},

	// Video errors
	ErrVideoNotFound:       {ErrVideoNotFound, http.StatusBadRequest, "영상이 존재하지 않습니다."},
	ErrVideoForbidden:      {ErrVideoForbidden, http.StatusForbidden, "본인 영상만 수정하거나 삭제할 수 있습니다."},
	ErrVideoFileMissing:    {ErrVideoFileMissing, http.StatusNotFound, "영상 파일을 찾을 수 없습니다."},
	ErrVideoInvalidAction:  {ErrVideoInvalidAction, http.StatusBadRequest, "지원하지 않는 action 입니다"},
	ErrVideoStorageFailed:  {ErrVideoStorageFailed, http.StatusInternalServerError, "영상 파일 저장에 실패했습니다."},
	ErrVideoInvalidRequest: {ErrVideoInvalidRequest, http.StatusBadRequest, "영상 요청 값이 올바르지 않습니다."},

	// Finding errors
	ErrFindingEmptyPrompt: {ErrFindingEmptyPrompt, http.StatusBadRequest, "prompt는 비어 있을 수 없습니다."},

	// Admin errors
	ErrAdminNotFound: {ErrAdminNotFound, http.StatusBadRequest, "존재하지 않는 관리자입니다."},
}

// GetCode returns the Code for a given error code
func GetCode(code int) Code {
	if c, ok := codeMap[code]; ok {
		return c
	}
	return codeMap[ErrInternalServer]
}

// GetHTTPStatus returns HTTP status for a given error code
func GetHTTPStatus(code int) int {
	return GetCode(code).Status
}

// GetMessage returns the message for a given error code
func GetMessage(code int) string {
	return GetCode(code).Message
}
