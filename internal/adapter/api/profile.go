package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"wellmatch/internal/domain"
)

var _ domain.ProfileAPI = (*Client)(nil)

// ImageField is the multipart field name of the profile image upload.
const ImageField = "profileImage"

const professionalsPath = "/api/professionals"

func (c *Client) FetchProfile(ctx context.Context) (domain.ProfileDraft, error) {
	var p domain.ProfileDraft
	if err := c.getJSON(ctx, professionalsPath+"/me", &p); err != nil {
		return domain.ProfileDraft{}, err
	}
	return p, nil
}

func (c *Client) FetchReference(ctx context.Context) (domain.ReferenceData, error) {
	var ref domain.ReferenceData
	if err := c.getJSON(ctx, professionalsPath+"/options", &ref); err != nil {
		return domain.ReferenceData{}, err
	}
	return ref, nil
}

func (c *Client) SaveProfile(ctx context.Context, update domain.ProfileUpdate) error {
	return c.putJSON(ctx, professionalsPath+"/me", update, nil)
}

func (c *Client) SaveAvailability(ctx context.Context, availability domain.Availability) error {
	if availability == nil {
		availability = domain.Availability{}
	}
	in := map[string]any{"availability": availability}
	return c.putJSON(ctx, professionalsPath+"/me/availability", in, nil)
}

// UploadImage posts the image as multipart form data and returns the URL
// the backend stored it under.
func (c *Client) UploadImage(ctx context.Context, filename string, image io.Reader) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(ImageField, filename)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, image); err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("close form: %w", err)
	}

	var out struct {
		ImageURL string `json:"imageUrl"`
	}
	err = c.do(ctx, c.authed, http.MethodPost, professionalsPath+"/me/upload-image", mw.FormDataContentType(), &buf, &out)
	if err != nil {
		return "", err
	}
	if out.ImageURL == "" {
		return "", &domain.TransportError{Op: "upload image", Err: fmt.Errorf("response has no imageUrl")}
	}
	return out.ImageURL, nil
}

func (c *Client) LogContact(ctx context.Context, clientAnonymousID string) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	in := map[string]string{"client_anonymous_id": clientAnonymousID}
	if err := c.postJSON(ctx, professionalsPath+"/me/log-contact", in, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}
