package controllers

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ammargroup/storefront-backend/api/responses"
	"github.com/ammargroup/storefront-backend/api/validators"
	productsvc "github.com/ammargroup/storefront-backend/internal/products"
	"github.com/ammargroup/storefront-backend/pkg/config"
	pkgerrors "github.com/ammargroup/storefront-backend/pkg/errors"
	"github.com/ammargroup/storefront-backend/pkg/logger"
	"github.com/shopspring/decimal"
)

// ListProducts serves the public catalog.
func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// GetProduct serves one catalog entry.
func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := productIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// productCreatedResponse reports the new product id and how many image files
// came in with it.
type productCreatedResponse struct {
	ID             int64                  `json:"id"`
	ImagesUploaded int                    `json:"imagesUploaded"`
	Product        *productsvc.ProductDTO `json:"product"`
}

type productUpdatedResponse struct {
	ImagesUploaded int                    `json:"imagesUploaded"`
	ImagesDeleted  int                    `json:"imagesDeleted"`
	Product        *productsvc.ProductDTO `json:"product"`
}

type productDeletedResponse struct {
	ImagesDeleted int `json:"imagesDeleted"`
}

// CreateProduct handles the admin multipart create form.
func CreateProduct(svc productsvc.Service, uploads config.UploadsConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, files, closeFiles, err := parseProductForm(r, uploads)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer closeFiles()

		input := productsvc.CreateProductInput{
			Name:            form.value("name"),
			SKU:             form.optional("sku"),
			Brand:           form.optional("brand"),
			Category:        form.optional("category"),
			Description:     form.optional("description"),
			LongDescription: form.optional("long_description"),
			InStock:         true,
		}
		if arr, err := form.stringArray("specifications"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		} else if arr != nil {
			input.Specifications = arr
		}
		if arr, err := form.stringArray("features"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		} else if arr != nil {
			input.Features = arr
		}
		if price, err := form.decimal("price"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		} else {
			input.Price = price
		}
		if v, err := form.integer("stock_count"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		} else if v != nil {
			input.StockCount = *v
		}
		if v, err := form.boolean("in_stock"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		} else if v != nil {
			input.InStock = *v
		}
		if v, err := form.float("rating"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		} else if v != nil {
			input.Rating = *v
		}
		if v, err := form.boolean("featured"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		} else if v != nil {
			input.Featured = *v
		}

		product, err := svc.Create(r.Context(), input, files)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, productCreatedResponse{
			ID:             product.ID,
			ImagesUploaded: len(files),
			Product:        product,
		})
	}
}

// UpdateProduct handles the admin multipart update form. The name field must
// always be sent; other absent fields stay untouched. The existingImages
// field, when present, is the keep-list for stored images.
func UpdateProduct(svc productsvc.Service, uploads config.UploadsConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := productIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		form, files, closeFiles, err := parseProductForm(r, uploads)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer closeFiles()

		var input productsvc.UpdateProductInput
		if v := form.optional("name"); v != nil {
			input.Name = v
		}
		input.SKU = form.optional("sku")
		input.Brand = form.optional("brand")
		input.Category = form.optional("category")
		input.Description = form.optional("description")
		input.LongDescription = form.optional("long_description")
		if arr, err := form.stringArray("specifications"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		} else if arr != nil {
			input.Specifications = &arr
		}
		if arr, err := form.stringArray("features"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		} else if arr != nil {
			input.Features = &arr
		}
		if price, err := form.decimal("price"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		} else {
			input.Price = price
		}
		if v, err := form.integer("stock_count"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		} else {
			input.StockCount = v
		}
		if v, err := form.boolean("in_stock"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		} else {
			input.InStock = v
		}
		if v, err := form.float("rating"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		} else {
			input.Rating = v
		}
		if v, err := form.boolean("featured"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		} else {
			input.Featured = v
		}
		if form.has("existingImages") {
			keep, err := form.stringArray("existingImages")
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			if keep == nil {
				keep = []string{}
			}
			input.ExistingImages = &keep
		}

		product, imagesDeleted, err := svc.Update(r.Context(), id, input, files)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, productUpdatedResponse{
			ImagesUploaded: len(files),
			ImagesDeleted:  imagesDeleted,
			Product:        product,
		})
	}
}

// DeleteProduct removes a product with its images and files.
func DeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := productIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		imagesDeleted, err := svc.Delete(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, productDeletedResponse{ImagesDeleted: imagesDeleted})
	}
}

type deleteImageRequest struct {
	ImageURL string `json:"imageUrl" validate:"required"`
}

// DeleteProductImage removes one image by URL.
func DeleteProductImage(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := productIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload deleteImageRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.DeleteImage(r.Context(), id, payload.ImageURL)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func productIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid product id")
	}
	return id, nil
}

// productForm wraps the parsed multipart fields.
type productForm struct {
	values map[string][]string
}

func parseProductForm(r *http.Request, uploads config.UploadsConfig) (*productForm, []productsvc.FileUpload, func(), error) {
	maxMemory := int64(uploads.MaxUploadMB) << 20
	if maxMemory <= 0 {
		maxMemory = 10 << 20
	}
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		return nil, nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}

	form := &productForm{values: r.MultipartForm.Value}

	headers := r.MultipartForm.File["images"]
	if uploads.MaxFiles > 0 && len(headers) > uploads.MaxFiles {
		return nil, nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "too many image files")
	}
	files, closeFiles, err := openUploads(headers)
	if err != nil {
		return nil, nil, nil, err
	}
	return form, files, closeFiles, nil
}

// openUploads opens every part once. The returned func closes all of them and
// must run after the service has consumed the readers.
func openUploads(headers []*multipart.FileHeader) ([]productsvc.FileUpload, func(), error) {
	files := make([]productsvc.FileUpload, 0, len(headers))
	opened := make([]multipart.File, 0, len(headers))
	closeFiles := func() {
		for _, f := range opened {
			f.Close()
		}
	}
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			closeFiles()
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "reading uploaded file")
		}
		opened = append(opened, f)
		files = append(files, productsvc.FileUpload{Filename: header.Filename, Content: f})
	}
	return files, closeFiles, nil
}

func (f *productForm) has(key string) bool {
	_, ok := f.values[key]
	return ok
}

func (f *productForm) value(key string) string {
	if vs, ok := f.values[key]; ok && len(vs) > 0 {
		return vs[0]
	}
	return ""
}

func (f *productForm) optional(key string) *string {
	if !f.has(key) {
		return nil
	}
	v := f.value(key)
	return &v
}

// stringArray accepts either a JSON array or repeated form values.
func (f *productForm) stringArray(key string) ([]string, error) {
	if !f.has(key) {
		return nil, nil
	}
	vs := f.values[key]
	if len(vs) == 1 && strings.HasPrefix(strings.TrimSpace(vs[0]), "[") {
		var out []string
		if err := json.Unmarshal([]byte(vs[0]), &out); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+key)
		}
		return out, nil
	}
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *productForm) decimal(key string) (*decimal.Decimal, error) {
	if !f.has(key) || strings.TrimSpace(f.value(key)) == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(f.value(key)))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+key)
	}
	return &d, nil
}

func (f *productForm) integer(key string) (*int, error) {
	if !f.has(key) || strings.TrimSpace(f.value(key)) == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(f.value(key)))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+key)
	}
	return &v, nil
}

func (f *productForm) float(key string) (*float64, error) {
	if !f.has(key) || strings.TrimSpace(f.value(key)) == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(f.value(key)), 64)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+key)
	}
	return &v, nil
}

func (f *productForm) boolean(key string) (*bool, error) {
	if !f.has(key) || strings.TrimSpace(f.value(key)) == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(strings.TrimSpace(f.value(key)))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+key)
	}
	return &v, nil
}
