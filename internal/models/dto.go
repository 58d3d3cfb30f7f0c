package models

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type VoteRequest struct {
	PrevVote Vote `json:"prevVote"`
	NextVote Vote `json:"nextVote"`
}

type UpdateFileRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type FileListResponse struct {
	Items []File `json:"items"`
}

type FileResponse struct {
	Item File `json:"item"`
}

type OKResponse struct {
	OK bool `json:"ok"`
}

// Credentials is the pair of signed tokens a client holds, independent of
// the cookie transport that carries them.
type Credentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
