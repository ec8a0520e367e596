package handler

import (
	"github.com/gofiber/fiber/v2"

	"supplierapi/internal/service"
)

// Services are the use cases the routes dispatch to.
type Services struct {
	Suppliers   service.SupplierService
	Situations  service.SituationService
	Attachments service.AttachmentService
	Matrices    service.MatrixService
	Domains     service.DomainService
	Evaluations service.EvaluationService
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app. Fiber routing is
// not strict, so every path also answers without its trailing slash.
func RegisterRoutes(app *fiber.App, db Pinger, s Services) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	api := app.Group("/api")
	api.Get("/", APIRoot())

	api.Post("/suppliers/", CreateSupplier(s.Suppliers))
	api.Get("/suppliers/:id/situations/", ListSupplierSituations(s.Situations))
	api.Get("/suppliers/:id/", GetSupplier(s.Suppliers))
	api.Put("/suppliers/:id/", UpdateSupplier(s.Suppliers))
	api.Patch("/suppliers/:id/", PatchSupplier(s.Suppliers))
	api.Delete("/suppliers/:id/", DeleteSupplier(s.Suppliers))
	api.Get("/suppliers-list/", ListSuppliers(s.Suppliers))
	api.Post("/suppliers-import/", ImportSuppliers(s.Suppliers))
	api.Get("/suppliers-export/", ExportSuppliers(s.Suppliers))
	api.Get("/cep/:cep/", LookupCEP(s.Suppliers))

	api.Post("/attachments/upload/", UploadAttachment(s.Attachments))
	api.Get("/attachments-list/:supplierId/", ListAttachments(s.Attachments))
	api.Get("/attachments/:id/download/", DownloadAttachment(s.Attachments))
	api.Delete("/attachments/:id/", DeleteAttachment(s.Attachments))
	api.Get("/attachment-types/", ListAttachmentTypes(s.Domains))

	matrix := api.Group("/responsibility-matrix")
	matrix.Post("/", CreateMatrix(s.Matrices))
	matrix.Get("/", MatrixNotAllowed(service.MsgMatrixListNotAllowed))
	matrix.Get("/:supplierId/", GetMatrix(s.Matrices))
	matrix.Put("/:supplierId/", UpdateMatrix(s.Matrices, true))
	matrix.Patch("/:supplierId/", UpdateMatrix(s.Matrices, false))
	matrix.Delete("/:supplierId/", MatrixNotAllowed(service.MsgMatrixDeleteNotAllowed))

	api.Get("/domain/:kind/", ListDomain(s.Domains))

	ev := api.Group("/evaluations")
	ev.Get("/criteria-list/", ListCriteria(s.Evaluations))
	ev.Post("/criteria/", CreateCriterion(s.Evaluations))
	ev.Get("/criteria/:id/", GetCriterion(s.Evaluations))
	ev.Put("/criteria/:id/", UpdateCriterion(s.Evaluations))
	ev.Patch("/criteria/:id/", PatchCriterion(s.Evaluations))
	ev.Delete("/criteria/:id/", DeleteCriterion(s.Evaluations))
	ev.Get("/periods/", ListPeriods(s.Evaluations))
	ev.Get("/evaluations-list/", ListEvaluations(s.Evaluations))
	ev.Post("/evaluations/", CreateEvaluation(s.Evaluations))
	ev.Get("/evaluations/:id/", GetEvaluation(s.Evaluations))
	ev.Put("/evaluations/:id/", UpdateEvaluation(s.Evaluations))
	ev.Delete("/evaluations/:id/", DeleteEvaluation(s.Evaluations))
	ev.Post("/evaluations/:id/scores/", AddScores(s.Evaluations))
	ev.Get("/summary/", EvaluationSummary(s.Evaluations))
	ev.Get("/supplier-history/", SupplierEvaluationHistory(s.Evaluations))
}
