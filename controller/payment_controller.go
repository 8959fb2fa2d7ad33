package controller

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/daberpro/Worldpedia-Education-Backend-sub000/midtrans"
	"github.com/daberpro/Worldpedia-Education-Backend-sub000/model"
	"github.com/daberpro/Worldpedia-Education-Backend-sub000/service"
)

const handlerTimeout = 15 * time.Second

type PaymentController struct {
	Svc *service.Reconciler
}

func NewPaymentController(svc *service.Reconciler) *PaymentController {
	return &PaymentController{Svc: svc}
}

func (pc *PaymentController) Create(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(uint)

	var req service.ChargeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid payload"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	res, err := pc.Svc.CreateCharge(ctx, userID, &req)
	if err != nil {
		return errJSON(c, err)
	}
	return c.Status(201).JSON(res)
}

// Notification receives the gateway's signed webhook. Duplicate deliveries
// resolve to 200 with no further side effects.
func (pc *PaymentController) Notification(c *fiber.Ctx) error {
	var n midtrans.Notification
	if err := c.BodyParser(&n); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "malformed payload"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	p, err := pc.Svc.VerifyAndApply(ctx, &n, c.Body())
	if err != nil {
		return errJSON(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok", "order_id": p.OrderID, "payment_status": p.Status})
}

// Sync polls the gateway for the transaction's status and applies it.
func (pc *PaymentController) Sync(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	p, err := pc.Svc.PollAndApply(ctx, c.Params("id"))
	if err != nil {
		return errJSON(c, err)
	}
	return c.JSON(p)
}

func (pc *PaymentController) Cancel(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	p, err := pc.Svc.Cancel(ctx, c.Params("id"), userID(c), isAdmin(c))
	if err != nil {
		return errJSON(c, err)
	}
	return c.JSON(p)
}

func (pc *PaymentController) Refund(c *fiber.Ctx) error {
	var body struct {
		Amount int64  `json:"amount"`
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid payload"})
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	p, err := pc.Svc.Refund(ctx, c.Params("id"), body.Amount, body.Reason)
	if err != nil {
		return errJSON(c, err)
	}
	return c.JSON(p)
}

func (pc *PaymentController) Get(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	p, err := pc.Svc.GetPayment(ctx, c.Params("id"), userID(c), isAdmin(c))
	if err != nil {
		return errJSON(c, err)
	}
	return c.JSON(p)
}

func (pc *PaymentController) GetByOrder(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	p, err := pc.Svc.GetPaymentByOrder(ctx, c.Params("orderId"), userID(c), isAdmin(c))
	if err != nil {
		return errJSON(c, err)
	}
	return c.JSON(p)
}

func (pc *PaymentController) List(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	list, err := pc.Svc.ListUserPayments(ctx, userID(c))
	if err != nil {
		return errJSON(c, err)
	}
	if list == nil {
		list = []model.Payment{}
	}
	return c.JSON(list)
}

func (pc *PaymentController) ListAll(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	status := model.PaymentStatus(c.Query("status"))
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)

	list, total, err := pc.Svc.ListPayments(ctx, status, page, limit)
	if err != nil {
		return errJSON(c, err)
	}
	if list == nil {
		list = []model.Payment{}
	}
	return c.JSON(fiber.Map{
		"payments": list,
		"total":    total,
		"page":     page,
		"limit":    limit,
	})
}

func (pc *PaymentController) Stats(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	stats, err := pc.Svc.Stats(ctx)
	if err != nil {
		return errJSON(c, err)
	}
	if stats == nil {
		stats = []model.StatusStat{}
	}
	return c.JSON(stats)
}

func (pc *PaymentController) Methods(c *fiber.Ctx) error {
	return c.JSON(pc.Svc.PaymentMethods())
}

func userID(c *fiber.Ctx) uint {
	id, _ := c.Locals("user_id").(uint)
	return id
}

func isAdmin(c *fiber.Ctx) bool {
	role, _ := c.Locals("user_role").(string)
	return role == "admin"
}

// errJSON maps the error taxonomy onto HTTP statuses.
func errJSON(c *fiber.Ctx, err error) error {
	var ve *model.ValidationError
	if errors.As(err, &ve) {
		return c.Status(400).JSON(fiber.Map{"error": "validation failed", "violations": ve.Violations})
	}
	var se *model.SignatureError
	if errors.As(err, &se) {
		return c.Status(400).JSON(fiber.Map{"error": "invalid signature"})
	}
	var nf *model.NotFoundError
	if errors.As(err, &nf) {
		return c.Status(404).JSON(fiber.Map{"error": nf.Error()})
	}
	var te *model.TransitionError
	if errors.As(err, &te) {
		return c.Status(409).JSON(fiber.Map{"error": te.Error()})
	}
	var ge *model.GatewayError
	if errors.As(err, &ge) {
		return c.Status(502).JSON(fiber.Map{"error": ge.Error()})
	}
	return c.Status(500).JSON(fiber.Map{"error": err.Error()})
}
