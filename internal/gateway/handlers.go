package gateway

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	keySID     = "sid"
	keySession = "session"
)

type Handler struct {
	client     *Client
	store      Store
	cookieName string
	sessionTTL time.Duration
	log        *zap.Logger
}

func NewHandler(client *Client, store Store, cookieName string, sessionTTL time.Duration, log *zap.Logger) *Handler {
	return &Handler{client: client, store: store, cookieName: cookieName, sessionTTL: sessionTTL, log: log}
}

// EnsureSID 没有会话 cookie 就发一个匿名的，flash 消息依赖它
func (h *Handler) EnsureSID() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(h.cookieName)
		if err != nil || sid == "" {
			sid = uuid.NewString()
			c.SetCookie(h.cookieName, sid, int(h.sessionTTL.Seconds()), "/", "", false, true)
		}
		c.Set(keySID, sid)
		c.Next()
	}
}

// RequireSession 未登录一律带 flash 跳回登录页
func (h *Handler) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := c.GetString(keySID)
		s, err := h.store.Get(c.Request.Context(), sid)
		if err != nil || s == nil || s.Token == "" {
			h.flash(c, "Authentication required")
			c.Redirect(http.StatusFound, "/signin")
			c.Abort()
			return
		}
		c.Set(keySession, s)
		c.Next()
	}
}

// RequireAdmin 非管理员回图书页
func (h *Handler) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.session(c).IsAdmin() {
			h.flash(c, "Admin access required")
			c.Redirect(http.StatusFound, "/books")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (h *Handler) session(c *gin.Context) *Session {
	v, ok := c.Get(keySession)
	if !ok {
		return nil
	}
	s, _ := v.(*Session)
	return s
}

func (h *Handler) flash(c *gin.Context, msg string) {
	if err := h.store.PushFlash(c.Request.Context(), c.GetString(keySID), msg); err != nil {
		h.log.Warn("flash push failed", zap.Error(err))
	}
}

// render 页面公共数据：flash 列表 + 当前会话
func (h *Handler) render(c *gin.Context, tmpl string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	flashes, _ := h.store.PopFlashes(c.Request.Context(), c.GetString(keySID))
	data["flashes"] = flashes
	data["session"] = h.session(c)
	c.HTML(http.StatusOK, tmpl, data)
}

func (h *Handler) Index(c *gin.Context) {
	sid := c.GetString(keySID)
	if s, _ := h.store.Get(c.Request.Context(), sid); s != nil && s.Token != "" {
		c.Redirect(http.StatusFound, "/books")
		return
	}
	c.Redirect(http.StatusFound, "/signin")
}

func (h *Handler) SigninForm(c *gin.Context) { h.render(c, "signin.html", nil) }

func (h *Handler) Signin(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")
	res, err := h.client.Login(c.Request.Context(), username, password)
	if err != nil {
		h.flash(c, "Invalid credentials")
		c.Redirect(http.StatusFound, "/signin")
		return
	}
	sid := c.GetString(keySID)
	s := Session{Token: res.Token, UserID: res.UserID, Username: username, Role: res.Role}
	if err := h.store.Save(c.Request.Context(), sid, s, h.sessionTTL); err != nil {
		h.log.Error("session save failed", zap.Error(err))
		h.flash(c, "Sign in failed, try again")
		c.Redirect(http.StatusFound, "/signin")
		return
	}
	c.Redirect(http.StatusFound, "/books")
}

func (h *Handler) SignupForm(c *gin.Context) { h.render(c, "signup.html", nil) }

func (h *Handler) Signup(c *gin.Context) {
	err := h.client.Signup(c.Request.Context(),
		c.PostForm("username"), c.PostForm("password"), c.PostForm("role"))
	if err != nil {
		h.flash(c, "Signup failed: "+err.Error())
		c.Redirect(http.StatusFound, "/signup")
		return
	}
	c.Redirect(http.StatusFound, "/signin")
}

func (h *Handler) Logout(c *gin.Context) {
	sid := c.GetString(keySID)
	_ = h.store.Delete(c.Request.Context(), sid)
	c.SetCookie(h.cookieName, "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, "/signin")
}

// Books 后端挂了也只降级成空列表 + flash，不给错误页
func (h *Handler) Books(c *gin.Context) {
	s := h.session(c)
	books, err := h.client.Books(c.Request.Context(), s.Token)
	if err != nil {
		h.flash(c, "Failed to load books: "+err.Error())
		books = nil
	}
	h.render(c, "books.html", gin.H{"books": books})
}

func (h *Handler) BookDetails(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.Redirect(http.StatusFound, "/books")
		return
	}
	s := h.session(c)
	book, err := h.client.Book(c.Request.Context(), s.Token, id)
	if err != nil || book == nil {
		h.flash(c, "Book not found")
		c.Redirect(http.StatusFound, "/books")
		return
	}
	h.render(c, "book_details.html", gin.H{"book": book})
}

func (h *Handler) BorrowBook(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.Redirect(http.StatusFound, "/books")
		return
	}
	s := h.session(c)
	if err := h.client.Borrow(c.Request.Context(), s.Token, s.UserID, id); err != nil {
		h.flash(c, "Borrow failed: "+err.Error())
	} else {
		h.flash(c, "Book borrowed successfully")
	}
	c.Redirect(http.StatusFound, "/books")
}

func (h *Handler) Borrowed(c *gin.Context) {
	s := h.session(c)
	rows, err := h.client.Borrowed(c.Request.Context(), s.Token)
	if err != nil {
		h.flash(c, "Failed to load borrowed books: "+err.Error())
		rows = nil
	}
	h.render(c, "borrow.html", gin.H{"borrowed": rows})
}

func (h *Handler) ReturnBook(c *gin.Context) {
	id, ok := paramID(c, "borrow_id")
	if !ok {
		c.Redirect(http.StatusFound, "/borrowed")
		return
	}
	s := h.session(c)
	if err := h.client.Return(c.Request.Context(), s.Token, id); err != nil {
		h.flash(c, "Return failed: "+err.Error())
	} else {
		h.flash(c, "Book returned successfully")
	}
	c.Redirect(http.StatusFound, "/borrowed")
}

// Admin 三个后端各自独立降级
func (h *Handler) Admin(c *gin.Context) {
	s := h.session(c)
	ctx := c.Request.Context()

	books, err := h.client.AllBooks(ctx, s.Token)
	if err != nil {
		h.flash(c, "Failed to load books: "+err.Error())
	}
	users, err := h.client.Users(ctx, s.Token)
	if err != nil {
		h.flash(c, "Failed to load users: "+err.Error())
	}
	borrows, err := h.client.AllBorrows(ctx, s.Token)
	if err != nil {
		h.flash(c, "Failed to load borrows: "+err.Error())
	}
	h.render(c, "admin.html", gin.H{
		"books":         books,
		"users":         users,
		"borrows":       borrows,
		"currentUserID": s.UserID,
	})
}

func (h *Handler) AdminUsersForm(c *gin.Context) { h.render(c, "admin-users.html", nil) }

func (h *Handler) AdminCreateUser(c *gin.Context) {
	s := h.session(c)
	err := h.client.CreateUser(c.Request.Context(), s.Token,
		c.PostForm("username"), c.PostForm("password"), c.PostForm("role"))
	if err != nil {
		h.flash(c, "Create user failed: "+err.Error())
		c.Redirect(http.StatusFound, "/admin/users")
		return
	}
	h.flash(c, "User created successfully")
	c.Redirect(http.StatusFound, "/admin")
}

func (h *Handler) AdminDeleteUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.Redirect(http.StatusFound, "/admin")
		return
	}
	s := h.session(c)
	if s.UserID == id {
		h.flash(c, "Cannot delete your own account")
		c.Redirect(http.StatusFound, "/admin")
		return
	}
	if err := h.client.DeleteUser(c.Request.Context(), s.Token, id); err != nil {
		h.flash(c, "Delete user failed: "+err.Error())
	} else {
		h.flash(c, "User deleted successfully")
	}
	c.Redirect(http.StatusFound, "/admin")
}

func (h *Handler) AddBookForm(c *gin.Context) { h.render(c, "add-book.html", nil) }

func (h *Handler) AddBook(c *gin.Context) {
	s := h.session(c)
	form := BookForm{
		Title:     c.PostForm("title"),
		Author:    c.PostForm("author"),
		AuthorBio: c.PostForm("author_bio"),
		ImageURL:  c.PostForm("image_url"),
		BookURL:   c.PostForm("book_url"),
	}
	if err := h.client.AddBook(c.Request.Context(), s.Token, form); err != nil {
		h.flash(c, "Add failed: "+err.Error())
		h.render(c, "add-book.html", nil)
		return
	}
	h.flash(c, "Book added successfully")
	c.Redirect(http.StatusFound, "/admin")
}

func (h *Handler) EditBookForm(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.Redirect(http.StatusFound, "/admin")
		return
	}
	s := h.session(c)
	book, err := h.client.Book(c.Request.Context(), s.Token, id)
	if err != nil || book == nil {
		h.flash(c, "Book not found")
		c.Redirect(http.StatusFound, "/admin")
		return
	}
	h.render(c, "edit-book.html", gin.H{"book": book})
}

func (h *Handler) EditBook(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.Redirect(http.StatusFound, "/admin")
		return
	}
	s := h.session(c)
	form := BookForm{
		Title:     c.PostForm("title"),
		Author:    c.PostForm("author"),
		AuthorBio: c.PostForm("author_bio"),
		ImageURL:  c.PostForm("image_url"),
		BookURL:   c.PostForm("book_url"),
	}
	available := c.PostForm("available") != "" // checkbox
	if err := h.client.UpdateBook(c.Request.Context(), s.Token, id, form, available); err != nil {
		h.flash(c, "Update failed: "+err.Error())
	} else {
		h.flash(c, "Book updated successfully")
	}
	c.Redirect(http.StatusFound, "/admin")
}

func (h *Handler) AdminDeleteBook(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		c.Redirect(http.StatusFound, "/admin")
		return
	}
	s := h.session(c)
	if err := h.client.DeleteBook(c.Request.Context(), s.Token, id); err != nil {
		h.flash(c, "Delete failed: "+err.Error())
	} else {
		h.flash(c, "Book deleted successfully")
	}
	c.Redirect(http.StatusFound, "/admin")
}

func paramID(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(v), true
}
