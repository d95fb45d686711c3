package http

import (
	"io"
	"log/slog"
	"net/http"
	"strings"

	"finboard/internal/auth"
	"finboard/internal/core"
)

// handleProfile renders and updates the logged-in user's profile.
// Updates come in as multipart forms because of the avatar upload.
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.render(w, r, "profile.html", profileView{User: newUserView(user)})
	case http.MethodPost:
		s.handleProfileUpdate(w, r, user)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

func (s *Server) handleProfileUpdate(w http.ResponseWriter, r *http.Request, user core.User) {
	// The size cap plus headroom for the text fields.
	if err := r.ParseMultipartForm(core.MaxAvatarBytes + 64*1024); err != nil {
		BadRequestError("invalid form data").Write(w)
		return
	}

	form := core.ProfileForm{
		Username: sanitizeInput(r.PostFormValue("username")),
		About:    sanitizeInput(r.PostFormValue("about")),
		Birthday: strings.TrimSpace(r.PostFormValue("birthday")),
	}

	file, header, err := r.FormFile("avatar")
	var avatar io.Reader
	if err == nil {
		defer file.Close()
		form.AvatarSize = header.Size
		form.AvatarContentType = header.Header.Get("Content-Type")
		avatar = file
	} else if err != http.ErrMissingFile {
		BadRequestError("invalid avatar upload").Write(w)
		return
	}

	fieldErrs := form.Validate()
	if !fieldErrs.Empty() {
		s.renderStatus(w, r, http.StatusUnprocessableEntity, "profile.html", profileView{User: previewUserView(user, form), Errors: fieldErrs})
		return
	}

	user.Username = form.Username
	user.About = form.About
	if form.Birthday == "" {
		user.Birthday = core.Date{}
	} else {
		d, err := core.ParseDate(form.Birthday)
		if err != nil {
			fieldErrs = core.FieldErrors{}
			fieldErrs.Add("birthday", core.RuleDate)
			s.renderStatus(w, r, http.StatusUnprocessableEntity, "profile.html", profileView{User: previewUserView(user, form), Errors: fieldErrs})
			return
		}
		user.Birthday = d
	}

	if avatar != nil {
		path, err := s.avatars.Save(user.ID, form.AvatarContentType, avatar)
		if err != nil {
			slog.ErrorContext(r.Context(), "Avatar save failed", "user_id", user.ID, "error", err)
			fieldErrs = core.FieldErrors{}
			fieldErrs.Add("avatar", core.RuleMax)
			s.renderStatus(w, r, http.StatusUnprocessableEntity, "profile.html", profileView{User: previewUserView(user, form), Errors: fieldErrs})
			return
		}
		user.AvatarPath = path
	}

	if err := s.store.UpdateUserProfile(r.Context(), user); err != nil {
		slog.ErrorContext(r.Context(), "Profile update failed", "user_id", user.ID, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	slog.InfoContext(r.Context(), "Profile updated", "user_id", user.ID)
	s.render(w, r, "profile.html", profileView{User: newUserView(user), Saved: true})
}

// previewUserView re-renders the submitted values on validation failure.
func previewUserView(u core.User, form core.ProfileForm) userView {
	v := newUserView(u)
	v.Username = form.Username
	v.About = form.About
	v.Birthday = form.Birthday
	return v
}

// handleAvatar serves a stored avatar file.
func (s *Server) handleAvatar(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	name := strings.TrimPrefix(r.URL.Path, "/avatars/")
	f, err := s.avatars.Open(name)
	if err != nil {
		NotFoundError("avatar not found").Write(w)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		InternalServerError("could not read avatar").Write(w)
		return
	}
	http.ServeContent(w, r, name, info.ModTime(), f)
}
