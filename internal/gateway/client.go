// Package gateway 前端编排层：不落库，只持有会话里的 token 并转发到三个后端服务。
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"go-library-services/internal/core/config"
)

// APIError 后端返回的非 2xx；Msg 取响应体里的 error 字段
type APIError struct {
	Status int
	Msg    string
}

func (e *APIError) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return fmt.Sprintf("backend returned %d", e.Status)
}

// 网关侧的视图结构，与后端 JSON 契约一一对应
type Book struct {
	ID        uint   `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	AuthorBio string `json:"author_bio"`
	ImageURL  string `json:"image_url"`
	BookURL   string `json:"book_url"`
	Available bool   `json:"available"`
}

type User struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type BorrowedBook struct {
	ID         uint      `json:"id"`
	BookID     uint      `json:"book_id"`
	Title      string    `json:"title"`
	Author     string    `json:"author"`
	AuthorBio  string    `json:"author_bio"`
	ImageURL   string    `json:"image_url"`
	BookURL    string    `json:"book_url"`
	BorrowDate time.Time `json:"borrow_date"`
}

type BorrowRow struct {
	BorrowID   uint      `json:"borrow_id"`
	UserID     uint      `json:"user_id"`
	Username   string    `json:"username"`
	Title      string    `json:"title"`
	Author     string    `json:"author"`
	BorrowDate time.Time `json:"borrow_date"`
	Available  bool      `json:"available"`
}

type LoginResult struct {
	Token  string `json:"token"`
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
}

type Client struct {
	authURL   string
	bookURL   string
	borrowURL string
	hc        *http.Client
	log       *zap.Logger
}

func NewClient(cfg config.Services, l *zap.Logger) *Client {
	return &Client{
		authURL:   strings.TrimRight(cfg.AuthURL, "/"),
		bookURL:   strings.TrimRight(cfg.BookURL, "/"),
		borrowURL: strings.TrimRight(cfg.BorrowURL, "/"),
		hc:        &http.Client{Timeout: time.Duration(cfg.CallTimeoutSec) * time.Second},
		log:       l,
	}
}

// do 统一出站调用：JSON 编解码、bearer 头、非 2xx 转 APIError
func (c *Client) do(ctx context.Context, method, url, token string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := c.hc.Do(req)
	if err != nil {
		c.log.Warn("backend call failed", zap.String("url", url), zap.Error(err))
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		var eb struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(res.Body).Decode(&eb)
		c.log.Warn("backend error", zap.String("url", url), zap.Int("status", res.StatusCode), zap.String("error", eb.Error))
		return &APIError{Status: res.StatusCode, Msg: eb.Error}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}

// ---- auth 服务 ----

func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var out LoginResult
	err := c.do(ctx, http.MethodPost, c.authURL+"/login", "",
		map[string]string{"username": username, "password": password}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Signup(ctx context.Context, username, password, role string) error {
	return c.do(ctx, http.MethodPost, c.authURL+"/signup", "",
		map[string]string{"username": username, "password": password, "role": role}, nil)
}

func (c *Client) Users(ctx context.Context, token string) ([]User, error) {
	var out struct {
		Users []User `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, c.authURL+"/users", token, nil, &out); err != nil {
		return nil, err
	}
	return out.Users, nil
}

func (c *Client) CreateUser(ctx context.Context, token, username, password, role string) error {
	return c.do(ctx, http.MethodPost, c.authURL+"/users", token,
		map[string]string{"username": username, "password": password, "role": role}, nil)
}

func (c *Client) DeleteUser(ctx context.Context, token string, userID uint) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("%s/users/%d", c.authURL, userID), token, nil, nil)
}

// ---- book 服务 ----

func (c *Client) Books(ctx context.Context, token string) ([]Book, error) {
	var out struct {
		Books []Book `json:"books"`
	}
	if err := c.do(ctx, http.MethodGet, c.bookURL+"/books", token, nil, &out); err != nil {
		return nil, err
	}
	return out.Books, nil
}

func (c *Client) AllBooks(ctx context.Context, token string) ([]Book, error) {
	var out struct {
		Books []Book `json:"books"`
	}
	if err := c.do(ctx, http.MethodGet, c.bookURL+"/books/all", token, nil, &out); err != nil {
		return nil, err
	}
	return out.Books, nil
}

func (c *Client) Book(ctx context.Context, token string, id uint) (*Book, error) {
	var out struct {
		Book *Book `json:"book"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("%s/books/%d", c.bookURL, id), token, nil, &out); err != nil {
		return nil, err
	}
	return out.Book, nil
}

// BookForm 管理端新增/编辑表单字段
type BookForm struct {
	Title     string `json:"title"`
	Author    string `json:"author"`
	AuthorBio string `json:"author_bio"`
	ImageURL  string `json:"image_url"`
	BookURL   string `json:"book_url"`
}

func (c *Client) AddBook(ctx context.Context, token string, form BookForm) error {
	return c.do(ctx, http.MethodPost, c.bookURL+"/books", token, form, nil)
}

func (c *Client) UpdateBook(ctx context.Context, token string, id uint, form BookForm, available bool) error {
	body := map[string]any{
		"title":      form.Title,
		"author":     form.Author,
		"author_bio": form.AuthorBio,
		"image_url":  form.ImageURL,
		"book_url":   form.BookURL,
		"available":  available,
	}
	return c.do(ctx, http.MethodPut, fmt.Sprintf("%s/books/%d", c.bookURL, id), token, body, nil)
}

func (c *Client) DeleteBook(ctx context.Context, token string, id uint) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("%s/books/%d", c.bookURL, id), token, nil, nil)
}

// ---- borrow 服务 ----

func (c *Client) Borrow(ctx context.Context, token string, userID, bookID uint) error {
	return c.do(ctx, http.MethodPost, c.borrowURL+"/borrow", token,
		map[string]uint{"user_id": userID, "book_id": bookID}, nil)
}

func (c *Client) Return(ctx context.Context, token string, borrowID uint) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("%s/return/%d", c.borrowURL, borrowID), token, nil, nil)
}

func (c *Client) Borrowed(ctx context.Context, token string) ([]BorrowedBook, error) {
	var out struct {
		BorrowedBooks []BorrowedBook `json:"borrowed_books"`
	}
	if err := c.do(ctx, http.MethodGet, c.borrowURL+"/borrowed", token, nil, &out); err != nil {
		return nil, err
	}
	return out.BorrowedBooks, nil
}

func (c *Client) AllBorrows(ctx context.Context, token string) ([]BorrowRow, error) {
	var out struct {
		Borrows []BorrowRow `json:"borrows"`
	}
	if err := c.do(ctx, http.MethodGet, c.borrowURL+"/borrows/all", token, nil, &out); err != nil {
		return nil, err
	}
	return out.Borrows, nil
}
