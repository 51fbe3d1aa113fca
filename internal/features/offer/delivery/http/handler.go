package http

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"marketplace-backend/internal/common/errors"
	"marketplace-backend/internal/common/middleware"
	"marketplace-backend/internal/features/offer/models"
	"marketplace-backend/internal/features/offer/service"
)

type OfferHandler struct {
	service service.OfferService
}

func NewOfferHandler(service service.OfferService) *OfferHandler {
	return &OfferHandler{service: service}
}

func (h *OfferHandler) RegisterRoutes(router *gin.RouterGroup, auth gin.HandlerFunc) {
	router.POST("/offer/publish", auth, h.publish)
	router.GET("/offers", h.list)
	router.GET("/offers/:id", h.getByID)
	router.PUT("/offer/:id", auth, h.update)
	router.DELETE("/offer/:id", auth, h.delete)
}

// @Summary Publish a new offer
// @Accept mpfd
// @Produce json
// @Success 201 {object} dto.OfferResponse
// @Router /offer/publish [post]
func (h *OfferHandler) publish(c *gin.Context) {
	owner, ok := middleware.AccountFromContext(c)
	if !ok {
		middleware.RespondError(c, errors.NewUnauthorizedError("missing account"))
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		middleware.RespondError(c, errors.NewValidationError("invalid multipart form"))
		return
	}

	fields, err := parseOfferFields(form)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	input := &service.PublishInput{Fields: *fields}

	if files := form.File["picture"]; len(files) > 0 {
		data, err := readFile(files[0])
		if err != nil {
			middleware.RespondError(c, errors.NewValidationError("could not read picture file"))
			return
		}
		input.Image = data
	}

	gallery, err := readFiles(form.File["pictures"])
	if err != nil {
		middleware.RespondError(c, errors.NewValidationError("could not read pictures files"))
		return
	}
	input.Gallery = gallery

	offer, err := h.service.Publish(c.Request.Context(), owner, input)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, offer)
}

// @Summary List offers with filters, sort and pagination
// @Produce json
// @Success 200 {object} dto.ListResponse
// @Router /offers [get]
func (h *OfferHandler) list(c *gin.Context) {
	params := service.ListParams{
		Name:     c.Query("title"),
		PriceMin: queryFloat(c, "priceMin"),
		PriceMax: queryFloat(c, "priceMax"),
		Sort:     c.Query("sort"),
		Page:     c.Query("page"),
	}

	page, err := h.service.List(c.Request.Context(), params)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// @Summary Get a single offer
// @Produce json
// @Success 200 {object} dto.OfferResponse
// @Router /offers/{id} [get]
func (h *OfferHandler) getByID(c *gin.Context) {
	offer, err := h.service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, offer)
}

// @Summary Update an owned offer
// @Accept mpfd
// @Produce json
// @Success 200 {object} dto.OfferResponse
// @Router /offer/{id} [put]
func (h *OfferHandler) update(c *gin.Context) {
	owner, ok := middleware.AccountFromContext(c)
	if !ok {
		middleware.RespondError(c, errors.NewUnauthorizedError("missing account"))
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		middleware.RespondError(c, errors.NewValidationError("invalid multipart form"))
		return
	}

	fields, err := parseOfferFields(form)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	input := &service.UpdateInput{Fields: *fields}

	if files := form.File["picture"]; len(files) > 0 {
		data, err := readFile(files[0])
		if err != nil {
			middleware.RespondError(c, errors.NewValidationError("could not read picture file"))
			return
		}
		input.Image = data
	}

	gallery, err := readFiles(form.File["pictures"])
	if err != nil {
		middleware.RespondError(c, errors.NewValidationError("could not read pictures files"))
		return
	}
	input.Gallery = gallery

	offer, err := h.service.Update(c.Request.Context(), c.Param("id"), owner, input)
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, offer)
}

// @Summary Delete an owned offer
// @Produce json
// @Success 200 {object} map[string]string
// @Router /offer/{id} [delete]
func (h *OfferHandler) delete(c *gin.Context) {
	owner, ok := middleware.AccountFromContext(c)
	if !ok {
		middleware.RespondError(c, errors.NewUnauthorizedError("missing account"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), c.Param("id"), owner); err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Offer deleted"})
}

// parseOfferFields maps form values to offer fields, keeping the
// present-vs-absent distinction partial updates rely on. Empty values
// count as absent.
func parseOfferFields(form *multipart.Form) (*models.OfferFields, error) {
	fields := &models.OfferFields{
		Name:        formString(form, "title"),
		Description: formString(form, "description"),
		Brand:       formString(form, "brand"),
		Size:        formString(form, "size"),
		Condition:   formString(form, "condition"),
		Color:       formString(form, "color"),
		City:        formString(form, "city"),
	}

	if raw := formString(form, "price"); raw != nil {
		price, err := strconv.ParseFloat(*raw, 64)
		if err != nil {
			return nil, errors.NewValidationError("price must be a number")
		}
		fields.Price = &price
	}

	return fields, nil
}

func formString(form *multipart.Form, key string) *string {
	values := form.Value[key]
	if len(values) == 0 || values[0] == "" {
		return nil
	}
	return &values[0]
}

func queryFloat(c *gin.Context, key string) *float64 {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		// Garbage bounds are ignored rather than matched against
		return nil
	}
	return &v
}

func readFile(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

func readFiles(headers []*multipart.FileHeader) ([][]byte, error) {
	var files [][]byte
	for _, header := range headers {
		data, err := readFile(header)
		if err != nil {
			return nil, err
		}
		files = append(files, data)
	}
	return files, nil
}
