package main

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"sync"
	"testing"
	"time"

	"go-registration-portal/cities"
	"go-registration-portal/models"

	"github.com/stretchr/testify/require"
)

var testConfig = ServerConfig{
	Host:           "localhost",
	Port:           8081,
	UseTls:         false,
	TlsCertPath:    "",
	TlsPrivKeyPath: "",
}

const testServerUrl = "http://localhost:8081"

var testCityNames = []string{"Pune", "Delhi", "Mumbai"}

var testServerKey, _ = rsa.GenerateKey(rand.Reader, 2048)

func startTestServer(t *testing.T, store ProfileStore, auth AuthProviderClient, sink RegistrationSink) *Server {
	t.Helper()

	testState := &ServerState{
		profileStore:     store,
		cityDirectory:    cities.NewStaticDirectory(testCityNames...),
		formValidator:    formValidatorImpl{},
		receiptCreator:   NewReceiptCreatorFromKey(testServerKey, "registration-portal"),
		authClient:       auth,
		registrationSink: sink,
	}

	srv, err := NewServer(testState, testConfig)
	require.NoError(t, err)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.Errorf("server error: %v", err)
		}
	}()

	waitUntilHealthy(t, "http://localhost:8081/api/health")
	t.Cleanup(func() {
		if err := srv.Stop(); err != nil {
			t.Logf("error shutting down server: %v", err)
		}
	})
	return srv
}

func waitUntilHealthy(t *testing.T, url string) {
	t.Helper()
	const maxAttempts = 50
	for i := 0; i < maxAttempts; i++ {
		if resp, err := http.Get(url); err == nil {
			_ = resp.Body.Close()
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("server did not start in time")
}

func postJSON[T any](t *testing.T, url string, payload any) (*http.Response, []byte, *T) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(b)
	}
	resp, err := http.Post(url, "application/json", body)
	require.NoError(t, err)

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded *T
	var v T
	_ = json.Unmarshal(respBody, &v)
	decoded = &v

	return resp, respBody, decoded
}

func putJSON[T any](t *testing.T, url string, payload any) (*http.Response, []byte, *T) {
	t.Helper()

	b, err := json.Marshal(payload)
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPut, url, bytes.NewBuffer(b))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var v T
	_ = json.Unmarshal(respBody, &v)

	return resp, respBody, &v
}

func getProfileForm(t *testing.T, url string) (*http.Response, []byte, *models.ProfileFormResponse) {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()

	var v models.ProfileFormResponse
	_ = json.Unmarshal(body, &v)

	return resp, body, &v
}

// postAvatar uploads bytes as a multipart file under the "avatar" field, with
// an explicit part content type so declared-type checks can be exercised.
func postAvatar(t *testing.T, url, filename, contentType string, data []byte) (*http.Response, []byte) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	partHeader := textproto.MIMEHeader{}
	partHeader.Set("Content-Disposition", fmt.Sprintf(`form-data; name="avatar"; filename="%s"`, filename))
	partHeader.Set("Content-Type", contentType)
	part, err := writer.CreatePart(partHeader)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	resp, err := http.Post(url, writer.FormDataContentType(), &buf)
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func mustStatus(t *testing.T, resp *http.Response, want int, body []byte) {
	t.Helper()
	require.Equalf(t, want, resp.StatusCode, "body: %s", body)
}

// Form builders

type formOpt func(*models.FormValues)

func withUserType(userType string) formOpt {
	return func(f *models.FormValues) { f.UserType = userType }
}

func withDob(dob string) formOpt {
	return func(f *models.FormValues) { f.Dob = dob }
}

func withCity(city string) formOpt {
	return func(f *models.FormValues) { f.Address.City = city }
}

func asStudentForm() formOpt {
	return func(f *models.FormValues) {
		f.UserType = models.UserTypeStudent
		f.Dob = dobYearsAgo(20)
		f.School = models.School{
			Name:   "City College",
			Id:     "CC-2041",
			Proof:  []models.FileValue{models.UploadedFile("card.pdf", 1024, "application/pdf")},
			Expiry: time.Now().UTC().AddDate(0, 0, 120).Format(models.DateLayout),
		}
	}
}

func asPensionerForm() formOpt {
	return func(f *models.FormValues) {
		f.UserType = models.UserTypePension
		f.Dob = dobYearsAgo(66)
		f.NationalId = "NID-5521"
		f.NationalIdProof = []models.FileValue{models.UploadedFile("nid.pdf", 2048, "application/pdf")}
	}
}

func validForm(opts ...formOpt) models.FormValues {
	form := models.FormValues{
		FullName:        "Alice Johnson",
		Username:        "alic3",
		Email:           "alice@example.com",
		Password:        "Secret1",
		ConfirmPassword: "Secret1",
		Address: models.Address{
			AddressLine1: "12 Main Street",
			City:         "Pune",
			ZipCode:      "411001",
		},
		Phone:    "+31612345678",
		UserType: models.UserTypeGeneral,
		Dob:      dobYearsAgo(30),
	}
	for _, o := range opts {
		o(&form)
	}
	return form
}

func dobYearsAgo(years int) string {
	return time.Now().UTC().AddDate(-years, 0, 0).Format(models.DateLayout)
}

func makeTestPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func strPtr(value string) *string {
	return &value
}

// test doubles

type resetRequest struct {
	email       string
	redirectUrl string
}

type fakeAuthClient struct {
	mutex         sync.Mutex
	lookup        *models.ProviderLookup
	lookupErr     error
	createErr     error
	resetErr      error
	created       []string
	resetRequests []resetRequest
}

func newFakeAuthClient() *fakeAuthClient {
	return &fakeAuthClient{lookup: &models.ProviderLookup{}}
}

func (c *fakeAuthClient) LookupEmailProvider(email string) (*models.ProviderLookup, error) {
	if c.lookupErr != nil {
		return nil, c.lookupErr
	}
	return c.lookup, nil
}

func (c *fakeAuthClient) RequestPasswordReset(email, redirectUrl string) error {
	if c.resetErr != nil {
		return c.resetErr
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.resetRequests = append(c.resetRequests, resetRequest{email: email, redirectUrl: redirectUrl})
	return nil
}

func (c *fakeAuthClient) CreateAccount(email, password string) error {
	if c.createErr != nil {
		return c.createErr
	}
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.created = append(c.created, email)
	return nil
}

func (c *fakeAuthClient) HealthCheck() error {
	return nil
}

type failingSink struct{}

func (failingSink) PublishAccepted(models.AcceptedRegistration) error {
	return fmt.Errorf("nats: connection closed")
}

func (failingSink) Close() {}

type recordingSink struct {
	mutex     sync.Mutex
	published []models.AcceptedRegistration
}

func (s *recordingSink) PublishAccepted(registration models.AcceptedRegistration) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.published = append(s.published, registration)
	return nil
}

func (s *recordingSink) Close() {}

func (s *recordingSink) events() []models.AcceptedRegistration {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return append([]models.AcceptedRegistration{}, s.published...)
}
