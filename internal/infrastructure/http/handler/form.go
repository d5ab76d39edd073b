package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"

	"github.com/mrops-br/catalog-api/internal/app/dto"
	"github.com/mrops-br/catalog-api/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	multipartMemory = 8 << 20
	imagesField     = "images"
)

// isMultipart reports whether the request carries a multipart/form-data body
func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// decodeJSON decodes body into v. Oversized bodies keep their *http.MaxBytesError.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return err
		}
		return fmt.Errorf("%w: malformed JSON body: %v", domain.ErrInvalidArgument, err)
	}
	return nil
}

func parseMultipart(r *http.Request) (*multipart.Form, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: malformed multipart body: %v", domain.ErrInvalidArgument, err)
	}
	return r.MultipartForm, nil
}

// formValue returns the first value of key and whether the field was sent at all
func formValue(form *multipart.Form, key string) (string, bool) {
	values, ok := form.Value[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

func parseValue(raw string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q is not a number", domain.ErrInvalidProductValue, raw)
	}
	return value, nil
}

// readUploads loads every file sent under the images field, in form order
func readUploads(form *multipart.Form) ([]domain.ImageUpload, error) {
	headers := form.File[imagesField]
	uploads := make([]domain.ImageUpload, 0, len(headers))
	for _, fh := range headers {
		content, err := readFile(fh)
		if err != nil {
			return nil, fmt.Errorf("failed to read upload %q: %w", fh.Filename, err)
		}
		uploads = append(uploads, domain.ImageUpload{Filename: fh.Filename, Content: content})
	}
	return uploads, nil
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func decodeCreateForm(form *multipart.Form) (*dto.CreateProductRequest, error) {
	req := &dto.CreateProductRequest{}
	req.Name, _ = formValue(form, "name")
	req.Description, _ = formValue(form, "description")
	req.CategoryID, _ = formValue(form, "categoryId")

	raw, ok := formValue(form, "value")
	if !ok {
		return nil, fmt.Errorf("%w: value is required", domain.ErrInvalidProductValue)
	}
	value, err := parseValue(raw)
	if err != nil {
		return nil, err
	}
	req.Value = value

	if req.Images, err = readUploads(form); err != nil {
		return nil, err
	}
	return req, nil
}

func decodeUpdateForm(form *multipart.Form) (*dto.UpdateProductRequest, error) {
	req := &dto.UpdateProductRequest{}
	if v, ok := formValue(form, "name"); ok {
		req.Name = &v
	}
	if v, ok := formValue(form, "description"); ok {
		req.Description = &v
	}
	if v, ok := formValue(form, "categoryId"); ok {
		req.CategoryID = &v
	}
	if raw, ok := formValue(form, "value"); ok {
		value, err := parseValue(raw)
		if err != nil {
			return nil, err
		}
		req.Value = &value
	}

	var err error
	if req.Images, err = readUploads(form); err != nil {
		return nil, err
	}
	return req, nil
}
