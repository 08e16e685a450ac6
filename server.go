package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"time"

	"go-registration-portal/cities"
	"go-registration-portal/forms"
	"go-registration-portal/images"
	"go-registration-portal/models"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const ErrorInternal = "error:internal"
const ERR_MARSHAL = "failed to marshal response message"
const ERR_DECODE_FORM = "failed to decode form values"
const ERR_CITY_DIRECTORY = "failed to load city list"
const ERR_ACCOUNT_CREATION = "failed to create account"
const ERR_PROFILE_SAVE = "failed to save profile"
const ERR_PROFILE_RETRIEVAL = "failed to get profile from storage"
const ERR_RECEIPT_CREATION = "failed to create registration receipt"
const ERR_PROVIDER_LOOKUP = "failed to look up email provider"
const ERR_RESET_REQUEST = "failed to request password reset"
const ERR_AVATAR_UPLOAD = "failed to process avatar upload"

// transportValidator checks the shape of the small JSON request bodies
// (lookups, password resets). Form submissions never go through it, they
// have their own ruleset in the forms package.
var transportValidator = newRequestValidator()

type ServerConfig struct {
	Host           string `json:"host"`
	Port           int    `json:"port"`
	UseTls         bool   `json:"use_tls,omitempty"`
	TlsPrivKeyPath string `json:"tls_priv_key_path,omitempty"`
	TlsCertPath    string `json:"tls_cert_path,omitempty"`
}

type ServerState struct {
	profileStore     ProfileStore
	cityDirectory    cities.Directory
	formValidator    FormValidator
	receiptCreator   ReceiptCreator
	authClient       AuthProviderClient
	registrationSink RegistrationSink
}

type SpaHandler struct {
	staticPath string
	indexPath  string
}

type Server struct {
	server *http.Server
	config ServerConfig
}

func (s *Server) ListenAndServe() error {
	if s.config.UseTls {
		slog.Info("Starting server with TLS", "host", s.config.Host, "port", s.config.Port, "cert", s.config.TlsCertPath, "key", s.config.TlsPrivKeyPath)
		return s.server.ListenAndServeTLS(s.config.TlsCertPath, s.config.TlsPrivKeyPath)
	} else {
		slog.Info("Starting server without TLS", "host", s.config.Host, "port", s.config.Port)
		return s.server.ListenAndServe()
	}
}

func (s *Server) Stop() error {
	slog.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err := s.server.Shutdown(ctx)
	if err != nil {
		slog.Error("Error during server shutdown", "error", err)
	} else {
		slog.Info("Server shut down successfully")
	}
	return err
}

// ServeHTTP inspects the URL path to locate a file within the static dir
// on the SPA handler. If a file is found, it will be served. If not, the
// file located at the index path on the SPA handler will be served. This
// is suitable behavior for serving an SPA (single page application).
// https://github.com/gorilla/mux?tab=readme-ov-file#serving-single-page-applications
func (h SpaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	slog.Debug("SPA handler serving request", "path", r.URL.Path)
	// Join internally call path.Clean to prevent directory traversal
	path := filepath.Join(h.staticPath, r.URL.Path)
	// check whether a file exists or is a directory at the given path
	fi, err := os.Stat(path)
	if os.IsNotExist(err) || fi.IsDir() {
		// file does not exist or path is a directory, serve index.html
		slog.Debug("Serving index.html for path", "path", r.URL.Path)
		http.ServeFile(w, r, filepath.Join(h.staticPath, h.indexPath))
		return
	}

	if err != nil {
		// if we got an error (that wasn't that the file doesn't exist) stating the
		// file, return a 500 internal server error and stop
		slog.Error("Error stating file", "path", path, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	// otherwise, use http.FileServer to serve the static file
	slog.Debug("Serving static file", "path", path)
	http.FileServer(http.Dir(h.staticPath)).ServeHTTP(w, r)
}

func NewServer(state *ServerState, config ServerConfig) (*Server, error) {
	slog.Info("Creating new server", "host", config.Host, "port", config.Port, "tls", config.UseTls)
	router := mux.NewRouter()

	// The blank registration form never changes while the server runs, so
	// it is marshalled once and served as a cacheable static payload.
	blankForm, err := json.Marshal(models.DefaultFormValues())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal blank registration form: %w", err)
	}

	router.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		slog.Debug("Health check request received")
		err := json.NewEncoder(w).Encode(map[string]bool{"ok": true})
		if err != nil {
			slog.Error("failed to write body to http response", "error", err)
		}
	})

	router.HandleFunc("/api/forms/registration", func(w http.ResponseWriter, r *http.Request) {
		slog.Debug("Serving blank registration form")
		writeStaticJSON(w, blankForm)
	}).Methods(http.MethodGet)

	router.HandleFunc("/api/register", func(w http.ResponseWriter, r *http.Request) {
		handleRegister(state, w, r)
	})
	router.HandleFunc("/api/profile/{id}", func(w http.ResponseWriter, r *http.Request) {
		handleGetProfile(state, w, r)
	}).Methods(http.MethodGet)
	router.HandleFunc("/api/profile/{id}", func(w http.ResponseWriter, r *http.Request) {
		handleUpdateProfile(state, w, r)
	}).Methods(http.MethodPut)
	router.HandleFunc("/api/profile/{id}/avatar", func(w http.ResponseWriter, r *http.Request) {
		handleAvatarUpload(state, w, r)
	})
	router.HandleFunc("/api/email-lookup", func(w http.ResponseWriter, r *http.Request) {
		handleEmailLookup(state, w, r)
	})
	router.HandleFunc("/api/password-reset", func(w http.ResponseWriter, r *http.Request) {
		handlePasswordReset(state, w, r)
	})

	slog.Debug("Registered all API routes")

	spa := SpaHandler{staticPath: "../frontend/build", indexPath: "index.html"}
	router.PathPrefix("/").Handler(spa)

	addr := fmt.Sprintf("%v:%v", config.Host, config.Port)
	srv := &http.Server{
		Handler: router,
		Addr:    addr,
		// Good practice: enforce timeouts for servers you create!
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	slog.Info("Server created successfully", "address", addr)
	return &Server{
		server: srv,
		config: config,
	}, nil
}

func handleRegister(state *ServerState, w http.ResponseWriter, r *http.Request) {
	defer closeRequestBody(r)

	if !requirePOST(w, r) {
		return
	}

	slog.Info("Received registration submission")

	form, err := decodeFormValues(r)
	if err != nil {
		respondWithErr(w, http.StatusBadRequest, "invalid request", ERR_DECODE_FORM, err)
		return
	}

	slog.Debug("Taking city directory snapshot")
	citySet, err := state.cityDirectory.Snapshot(r.Context())
	if err != nil {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_CITY_DIRECTORY, err)
		return
	}

	result := state.formValidator.ValidateRegistration(form, citySet)
	if !result.Valid() {
		respondWithFieldErrors(w, result)
		return
	}

	slog.Debug("Form passed validation, creating account", "username", form.Username)
	if err := state.authClient.CreateAccount(form.Email, form.Password); err != nil {
		respondWithErr(w, http.StatusBadGateway, "account creation failed", ERR_ACCOUNT_CREATION, err)
		return
	}

	forms.Normalize(form)

	submissionId := NewSubmissionId()
	profile := form.ToProfile()

	slog.Debug("Saving profile", "submission_id", submissionId)
	if err := state.profileStore.SaveProfile(submissionId, profile); err != nil {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_PROFILE_SAVE, err)
		return
	}

	slog.Debug("Creating registration receipt", "submission_id", submissionId)
	receipt, err := state.receiptCreator.CreateRegistrationReceipt(submissionId, profile)
	if err != nil {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_RECEIPT_CREATION, err)
		return
	}

	publishAccepted(state, submissionId, profile)

	response := models.RegistrationResponse{
		SubmissionId: submissionId,
		Receipt:      receipt,
		UserType:     profile.UserType,
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_MARSHAL, err)
		return
	}

	slog.Info("Registration accepted", "submission_id", submissionId, "user_type", profile.UserType)
}

func handleGetProfile(state *ServerState, w http.ResponseWriter, r *http.Request) {
	defer closeRequestBody(r)

	profileId := mux.Vars(r)["id"]
	slog.Info("Received request for profile form values", "profile_id", profileId)

	profile, err := state.profileStore.GetProfile(profileId)
	if err != nil {
		respondWithErr(w, http.StatusNotFound, "profile not found", ERR_PROFILE_RETRIEVAL, err)
		return
	}

	response := models.ProfileFormResponse{
		ProfileId: profileId,
		Form:      models.FormValuesFromProfile(profile),
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_MARSHAL, err)
		return
	}

	slog.Debug("Profile form values served", "profile_id", profileId)
}

func handleUpdateProfile(state *ServerState, w http.ResponseWriter, r *http.Request) {
	defer closeRequestBody(r)

	profileId := mux.Vars(r)["id"]
	slog.Info("Received profile update", "profile_id", profileId)

	existing, err := state.profileStore.GetProfile(profileId)
	if err != nil {
		respondWithErr(w, http.StatusNotFound, "profile not found", ERR_PROFILE_RETRIEVAL, err)
		return
	}

	form, err := decodeFormValues(r)
	if err != nil {
		respondWithErr(w, http.StatusBadRequest, "invalid request", ERR_DECODE_FORM, err)
		return
	}

	slog.Debug("Taking city directory snapshot")
	citySet, err := state.cityDirectory.Snapshot(r.Context())
	if err != nil {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_CITY_DIRECTORY, err)
		return
	}

	result := state.formValidator.ValidateProfile(form, citySet)
	if !result.Valid() {
		respondWithFieldErrors(w, result)
		return
	}

	forms.Normalize(form)

	updated := form.ToProfile()
	// An edit without a new picture keeps the stored avatar.
	if updated.AvatarUrl == "" {
		updated.AvatarUrl = existing.AvatarUrl
	}

	slog.Debug("Saving updated profile", "profile_id", profileId)
	if err := state.profileStore.SaveProfile(profileId, updated); err != nil {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_PROFILE_SAVE, err)
		return
	}

	response := models.ProfileFormResponse{
		ProfileId: profileId,
		Form:      models.FormValuesFromProfile(updated),
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_MARSHAL, err)
		return
	}

	slog.Info("Profile updated", "profile_id", profileId, "user_type", updated.UserType)
}

func handleAvatarUpload(state *ServerState, w http.ResponseWriter, r *http.Request) {
	defer closeRequestBody(r)

	if !requirePOST(w, r) {
		return
	}

	profileId := mux.Vars(r)["id"]
	slog.Info("Received avatar upload", "profile_id", profileId)

	profile, err := state.profileStore.GetProfile(profileId)
	if err != nil {
		respondWithErr(w, http.StatusNotFound, "profile not found", ERR_PROFILE_RETRIEVAL, err)
		return
	}

	// Bound the body a little above the upload limit, so an oversized file
	// still reaches the size rule and produces a field message instead of
	// a dropped connection.
	r.Body = http.MaxBytesReader(w, r.Body, forms.MaxUploadBytes+1024*1024)
	if err := r.ParseMultipartForm(forms.MaxUploadBytes); err != nil {
		respondWithErr(w, http.StatusBadRequest, "invalid request", ERR_AVATAR_UPLOAD, err)
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		respondWithErr(w, http.StatusBadRequest, "invalid request", ERR_AVATAR_UPLOAD, err)
		return
	}
	defer func() {
		if err := file.Close(); err != nil {
			slog.Error("failed to close uploaded file", "error", err)
		}
	}()

	declared := header.Header.Get("Content-Type")
	upload := models.UploadedFile(header.Filename, header.Size, declared)
	if msg := forms.CheckImageFile(upload, true); msg != "" {
		respondWithFieldErrors(w, map[string]string{"profilePic": msg})
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		respondWithErr(w, http.StatusBadRequest, "invalid request", ERR_AVATAR_UPLOAD, err)
		return
	}

	if !images.MatchesDeclaredType(data, declared) {
		slog.Warn("Avatar content does not match declared type", "declared", declared, "sniffed", images.DetectMime(data))
		respondWithFieldErrors(w, map[string]string{"profilePic": "File content does not match its declared type"})
		return
	}

	processed, err := images.ProcessAvatar(data)
	if err != nil {
		slog.Warn("Avatar image could not be decoded", "error", err)
		respondWithFieldErrors(w, map[string]string{"profilePic": "Not a valid image file"})
		return
	}

	profile.AvatarUrl = fmt.Sprintf("/avatars/%s/%s", profileId, path.Base(header.Filename))
	slog.Debug("Saving profile with new avatar", "profile_id", profileId, "avatar_url", profile.AvatarUrl)
	if err := state.profileStore.SaveProfile(profileId, profile); err != nil {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_PROFILE_SAVE, err)
		return
	}

	response := models.AvatarUploadResponse{
		AvatarUrl: profile.AvatarUrl,
		Thumbnail: processed.ThumbnailBase64,
	}

	if err := writeJSON(w, http.StatusOK, response); err != nil {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_MARSHAL, err)
		return
	}

	slog.Info("Avatar updated", "profile_id", profileId, "width", processed.Width, "height", processed.Height)
}

func handleEmailLookup(state *ServerState, w http.ResponseWriter, r *http.Request) {
	defer closeRequestBody(r)

	if !requirePOST(w, r) {
		return
	}

	slog.Info("Received email lookup request")

	var request models.EmailLookupRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respondWithErr(w, http.StatusBadRequest, "invalid request", "failed to decode email lookup request", err)
		return
	}

	if fields := transportValidator.FieldErrors(request); len(fields) > 0 {
		respondWithFieldErrors(w, fields)
		return
	}

	lookup, err := state.authClient.LookupEmailProvider(request.Email)
	if err != nil {
		respondWithErr(w, http.StatusBadGateway, "provider lookup failed", ERR_PROVIDER_LOOKUP, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, lookup); err != nil {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_MARSHAL, err)
		return
	}

	slog.Debug("Email lookup completed", "known", lookup.Email != nil)
}

func handlePasswordReset(state *ServerState, w http.ResponseWriter, r *http.Request) {
	defer closeRequestBody(r)

	if !requirePOST(w, r) {
		return
	}

	slog.Info("Received password reset request")

	var request models.PasswordResetRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respondWithErr(w, http.StatusBadRequest, "invalid request", "failed to decode password reset request", err)
		return
	}

	if fields := transportValidator.FieldErrors(request); len(fields) > 0 {
		respondWithFieldErrors(w, fields)
		return
	}

	lookup, err := state.authClient.LookupEmailProvider(request.Email)
	if err != nil {
		respondWithErr(w, http.StatusBadGateway, "provider lookup failed", ERR_PROVIDER_LOOKUP, err)
		return
	}

	// Unknown emails get the same answer as a sent mail, so the endpoint
	// can't be used to probe which addresses have an account.
	if lookup.Email == nil {
		slog.Debug("No account for email, answering as sent")
		if err := writeJSON(w, http.StatusOK, models.PasswordResetResponse{Sent: true}); err != nil {
			respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_MARSHAL, err)
		}
		return
	}

	if lookup.Provider != nil && *lookup.Provider != "email" {
		slog.Info("Password reset refused, account uses an external provider", "provider", *lookup.Provider)
		response := models.PasswordResetResponse{Sent: false, Provider: *lookup.Provider}
		if err := writeJSON(w, http.StatusConflict, response); err != nil {
			respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_MARSHAL, err)
		}
		return
	}

	if err := state.authClient.RequestPasswordReset(request.Email, request.RedirectUrl); err != nil {
		respondWithErr(w, http.StatusBadGateway, "password reset failed", ERR_RESET_REQUEST, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, models.PasswordResetResponse{Sent: true}); err != nil {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_MARSHAL, err)
		return
	}

	slog.Info("Password reset mail requested")
}

// -----------------------------------------------------------------------------------

// NewSubmissionId returns the identifier under which an accepted
// registration is stored.
func NewSubmissionId() string {
	return uuid.NewString()
}

// publishAccepted hands the accepted registration to the configured sink.
// Publishing is best effort, a sink failure never fails the registration.
func publishAccepted(state *ServerState, submissionId string, profile models.StoredProfile) {
	event := models.AcceptedRegistration{
		SubmissionId: submissionId,
		Profile:      profile,
		AcceptedAt:   time.Now().UTC(),
	}
	if err := state.registrationSink.PublishAccepted(event); err != nil {
		slog.Warn("Failed to publish accepted registration", "submission_id", submissionId, "error", err)
	}
}

// decodeFormValues decodes a submitted form body
func decodeFormValues(r *http.Request) (*models.FormValues, error) {
	slog.Debug("Decoding form values")
	var form models.FormValues
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		slog.Warn("Failed to decode form values", "error", err)
		return nil, fmt.Errorf("decode request body: %w", err)
	}
	slog.Debug("Form values decoded successfully", "user_type", form.UserType)
	return &form, nil
}

// respondWithFieldErrors answers a submission that failed validation with
// the first failing message per field path.
func respondWithFieldErrors(w http.ResponseWriter, fields map[string]string) {
	slog.Debug("Request failed validation", "field_count", len(fields))
	response := models.ValidationFailureResponse{
		Error:  "validation failed",
		Fields: fields,
	}
	if err := writeJSON(w, http.StatusUnprocessableEntity, response); err != nil {
		respondWithErr(w, http.StatusInternalServerError, ErrorInternal, ERR_MARSHAL, err)
	}
}

func respondWithErr(w http.ResponseWriter, code int, responseBody string, logMsg string, e error) {
	slog.Error(logMsg, "error", e, "status_code", code, "response_body", responseBody)
	w.WriteHeader(code)
	if _, err := w.Write([]byte(responseBody)); err != nil {
		slog.Error("failed to write body to http response", "error", err)
	}
}

// helpers ------------

func writeStaticJSON(w http.ResponseWriter, b []byte) {
	slog.Debug("Writing static JSON", "size", len(b))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	if _, err := w.Write(b); err != nil {
		slog.Error("failed to write body to http response", "error", err)
	} else {
		slog.Debug("Static JSON written successfully", "size", len(b))
	}
}

func closeRequestBody(r *http.Request) {
	if err := r.Body.Close(); err != nil {
		slog.Error("failed to close request body", "error", err)
	}

}

func requirePOST(w http.ResponseWriter, r *http.Request) bool {
	if r.Method != http.MethodPost {
		slog.Debug("Non-POST request rejected", "method", r.Method, "path", r.URL.Path)
		respondWithErr(w, http.StatusMethodNotAllowed, "method not allowed", "invalid method", nil)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	slog.Debug("Writing JSON response", "status_code", status)
	payload, err := json.Marshal(v)
	if err != nil {
		slog.Error("Failed to marshal JSON payload", "error", err)
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(payload)
	if err != nil {
		slog.Error("failed to write body to http response", "error", err)
	} else {
		slog.Debug("JSON response written successfully", "status_code", status, "payload_size", len(payload))
	}
	return nil
}
