package controllers

import (
	"log"
	"net/http"
	"time"

	"equipment_lending_portal/app"
	"equipment_lending_portal/db"

	"github.com/gin-gonic/gin"
)

type BorrowRequestController struct{ *Srv }

func NewBorrowRequestController(s *Srv) *BorrowRequestController {
	return &BorrowRequestController{Srv: s}
}

// POST /api/borrow-requests
func (bc *BorrowRequestController) Create(c *gin.Context) {
	var in struct {
		EquipmentID        string    `json:"equipmentId" binding:"required"`
		Quantity           int       `json:"quantity" binding:"required,min=1"`
		ExpectedReturnDate time.Time `json:"expectedReturnDate" binding:"required"`
		Purpose            string    `json:"purpose" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	userID, ok := app.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, app.H{"error": "unauthorized"})
		return
	}

	req, err := bc.Repo.CreateBorrowRequest(c.Request.Context(), db.CreateBorrowRequestInput{
		EquipmentID:        in.EquipmentID,
		UserID:             userID,
		Quantity:           in.Quantity,
		ExpectedReturnDate: in.ExpectedReturnDate,
		Purpose:            in.Purpose,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

// GET /api/borrow-requests?status=
// 学生只能看到自己的请求；staff/admin 看到全部
func (bc *BorrowRequestController) List(c *gin.Context) {
	q := db.BorrowRequestQuery{Status: c.Query("status")}
	if u, ok := app.CurrentUser(c); ok && !u.IsStaffOrAdmin() {
		q.UserID = u.ID
	}
	rows, err := bc.Repo.ListBorrowRequests(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"requests": rows})
}

// GET /api/borrow-requests/:id
func (bc *BorrowRequestController) Get(c *gin.Context) {
	row, err := bc.Repo.GetBorrowRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	// 学生只能看自己的
	if u, ok := app.CurrentUser(c); ok && !u.IsStaffOrAdmin() && u.ID != row.UserID {
		c.JSON(http.StatusForbidden, app.H{"error": "not authorized"})
		return
	}
	c.JSON(http.StatusOK, row)
}

// PUT /api/borrow-requests/:id/approve（staff/admin）
func (bc *BorrowRequestController) Approve(c *gin.Context) {
	actorID, _ := app.CurrentUserID(c)
	req, err := bc.Repo.ApproveBorrowRequest(c.Request.Context(), c.Param("id"), actorID)
	if err != nil {
		writeError(c, err)
		return
	}

	// 通知是事务提交后的副作用，失败只记日志
	if row, err := bc.Repo.GetBorrowRequest(c.Request.Context(), req.ID); err == nil {
		bc.Notifier.RequestApproved(c.Request.Context(), row)
	} else {
		log.Printf("approve %s: load for notification: %v", req.ID, err)
	}
	c.JSON(http.StatusOK, req)
}

// PUT /api/borrow-requests/:id/reject（staff/admin）
func (bc *BorrowRequestController) Reject(c *gin.Context) {
	var in struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&in)

	actorID, _ := app.CurrentUserID(c)
	req, err := bc.Repo.RejectBorrowRequest(c.Request.Context(), c.Param("id"), actorID, in.Reason)
	if err != nil {
		writeError(c, err)
		return
	}

	if row, err := bc.Repo.GetBorrowRequest(c.Request.Context(), req.ID); err == nil {
		bc.Notifier.RequestRejected(c.Request.Context(), row)
	} else {
		log.Printf("reject %s: load for notification: %v", req.ID, err)
	}
	c.JSON(http.StatusOK, req)
}

// PUT /api/borrow-requests/:id/return（staff/admin）
func (bc *BorrowRequestController) Return(c *gin.Context) {
	var in struct {
		Notes string `json:"notes"`
	}
	_ = c.ShouldBindJSON(&in)

	req, err := bc.Repo.ReturnBorrowRequest(c.Request.Context(), c.Param("id"), in.Notes)
	if err != nil {
		writeError(c, err)
		return
	}

	if row, err := bc.Repo.GetBorrowRequest(c.Request.Context(), req.ID); err == nil {
		bc.Notifier.ReturnConfirmed(c.Request.Context(), row)
	} else {
		log.Printf("return %s: load for notification: %v", req.ID, err)
	}
	c.JSON(http.StatusOK, req)
}
