package sites

import "sitehost/internal/model"

// DeployResponse is the success body for POST /sites/deploy
type DeployResponse struct {
	Success bool       `json:"success"`
	Site    model.Site `json:"site"`
	Files   int        `json:"files"`
}

// RenameRequest is the request body for PATCH /sites
type RenameRequest struct {
	ID        int    `json:"id"`
	Subdomain string `json:"subdomain"`
}

// DeleteRequest is the request body for DELETE /sites
type DeleteRequest struct {
	ID int `json:"id"`
}
