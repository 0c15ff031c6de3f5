package http

import "github.com/squadline/squadline-backend/internal/teams/service"

type Handler struct {
	teams *service.TeamService
}

func New(teams *service.TeamService) *Handler {
	return &Handler{teams: teams}
}

type createTeamReq struct {
	Name string `json:"name" binding:"required"`
}

type inviteReq struct {
	Email string `json:"email" binding:"required"`
	Name  string `json:"name" binding:"required"`
}
