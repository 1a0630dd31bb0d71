package controllers

import (
	"net/http"

	"equipment_lending_portal/app"
	"equipment_lending_portal/db"
	"equipment_lending_portal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type EquipmentController struct{ *Srv }

func NewEquipmentController(s *Srv) *EquipmentController { return &EquipmentController{Srv: s} }

// GET /api/equipment?category=&search=&availability=available
func (ec *EquipmentController) List(c *gin.Context) {
	q := db.EquipmentQuery{
		Category:      c.Query("category"),
		Search:        c.Query("search"),
		AvailableOnly: c.Query("availability") == "available",
	}
	items, err := ec.Repo.ListEquipment(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"equipment": items})
}

// GET /api/equipment/:id
func (ec *EquipmentController) Get(c *gin.Context) {
	e, err := ec.Repo.FindEquipmentByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// POST /api/equipment（仅管理员）
func (ec *EquipmentController) Create(c *gin.Context) {
	var in struct {
		Name        string `json:"name" binding:"required"`
		Category    string `json:"category" binding:"required"`
		Description string `json:"description"`
		Condition   string `json:"condition"`
		Quantity    int    `json:"quantity" binding:"required,min=1"`
		ImageURL    string `json:"imageUrl"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if !models.ValidCategory(in.Category) {
		c.JSON(http.StatusBadRequest, app.H{"error": "unknown category"})
		return
	}
	if in.Condition == "" {
		in.Condition = models.ConditionGood
	}
	if !models.ValidCondition(in.Condition) {
		c.JSON(http.StatusBadRequest, app.H{"error": "unknown condition"})
		return
	}

	userID, _ := app.CurrentUserID(c)
	e := &models.Equipment{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Category:    in.Category,
		Description: in.Description,
		Condition:   in.Condition,
		Quantity:    in.Quantity,
		Available:   in.Quantity, // 新设备全部可借
		ImageURL:    in.ImageURL,
		AddedBy:     userID,
	}
	if err := ec.Repo.CreateEquipment(c.Request.Context(), e); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, e)
}

// PUT /api/equipment/:id（仅管理员）
func (ec *EquipmentController) Update(c *gin.Context) {
	var in struct {
		Name        *string `json:"name"`
		Category    *string `json:"category"`
		Description *string `json:"description"`
		Condition   *string `json:"condition"`
		Quantity    *int    `json:"quantity"`
		ImageURL    *string `json:"imageUrl"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	if in.Category != nil && !models.ValidCategory(*in.Category) {
		c.JSON(http.StatusBadRequest, app.H{"error": "unknown category"})
		return
	}
	if in.Condition != nil && !models.ValidCondition(*in.Condition) {
		c.JSON(http.StatusBadRequest, app.H{"error": "unknown condition"})
		return
	}

	e, err := ec.Repo.UpdateEquipment(c.Request.Context(), c.Param("id"), db.UpdateEquipmentInput{
		Name:        in.Name,
		Category:    in.Category,
		Description: in.Description,
		Condition:   in.Condition,
		Quantity:    in.Quantity,
		ImageURL:    in.ImageURL,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// DELETE /api/equipment/:id（仅管理员，硬删除）
func (ec *EquipmentController) Delete(c *gin.Context) {
	if err := ec.Repo.DeleteEquipment(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}
