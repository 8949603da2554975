package handlers

import (
	"net/http"

	"roninads/internal/auth"
	"roninads/internal/services"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	posts *services.PostService
}

func NewPostHandler(posts *services.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// GetPosts returns all active posts
func (h *PostHandler) GetPosts(c *gin.Context) {
	limit, offset := pagination(c)

	posts, total, err := h.posts.ListActive(c.Query("type"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    posts,
		"total":   total,
	})
}

// GetPost returns a single post
func (h *PostHandler) GetPost(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}

	post, err := h.posts.Get(postID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": post})
}

// GetMyPosts returns the member's own posts in every status
func (h *PostHandler) GetMyPosts(c *gin.Context) {
	member := auth.GetMember(c)

	posts, err := h.posts.MyPosts(member.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": posts})
}

// CreatePost submits a new post for approval
func (h *PostHandler) CreatePost(c *gin.Context) {
	var req struct {
		Title    string `json:"title" binding:"required"`
		Content  string `json:"content" binding:"required"`
		PostType string `json:"post_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	post, err := h.posts.Create(auth.GetMember(c), req.Title, req.Content, req.PostType)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": post})
}

// UpdatePost edits a post; an edited post goes back through approval
func (h *PostHandler) UpdatePost(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Title    string `json:"title"`
		Content  string `json:"content"`
		PostType string `json:"post_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	post, err := h.posts.Update(auth.GetMember(c), postID, req.Title, req.Content, req.PostType)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": post})
}

// DeletePost deactivates a post
func (h *PostHandler) DeletePost(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.posts.Delete(auth.GetMember(c), postID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RecordView awards points for a qualifying view
func (h *PostHandler) RecordView(c *gin.Context) {
	postID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req struct {
		Duration int `json:"duration" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	result, err := h.posts.RecordView(auth.GetMember(c), postID, req.Duration)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}
