package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/zeu5/graphenv/types"
)

// session is a single environment. Requests on the same session are serialized.
type session struct {
	mu     sync.Mutex
	domain string
	env    *types.GraphEnv
}

// Server exposes GraphEnv sessions over http
type Server struct {
	Addr    string
	router  *gin.Engine
	server  *http.Server
	logger  zerolog.Logger
	metrics *metrics

	lock     *sync.Mutex
	sessions map[string]*session
	nextID   int
}

func NewServer(addr string) *Server {
	s := &Server{
		Addr:     addr,
		logger:   log.With().Str("component", "server").Logger(),
		metrics:  newMetrics(),
		lock:     new(sync.Mutex),
		sessions: make(map[string]*session),
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests)
	r.GET("/envs", s.handleList)
	r.POST("/envs", s.handleCreate)
	r.POST("/envs/:id/reset", s.handleReset)
	r.POST("/envs/:id/step", s.handleStep)
	r.GET("/envs/:id/spaces", s.handleSpaces)
	r.DELETE("/envs/:id", s.handleDelete)
	r.GET("/metrics", gin.WrapH(s.metrics.handler()))
	s.router = r
	s.server = &http.Server{
		Addr:    addr,
		Handler: r,
	}
	return s
}

// Handler returns the router serving the environment api
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.Addr).Msg("serving environments")
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.metrics.observeRequest(c)
	s.logger.Debug().
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Int("status", c.Writer.Status()).
		Dur("took", time.Since(start)).
		Msg("request")
}

func (s *Server) get(id string) (*session, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *Server) add(sess *session) string {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.nextID++
	id := strconv.Itoa(s.nextID)
	s.sessions[id] = sess
	return id
}

// statusOf maps environment errors to http status codes.
// Invalid requests of the caller are 400, everything else is a server side fault.
func statusOf(err error) int {
	switch {
	case errors.Is(err, types.ErrActionOutOfRange),
		errors.Is(err, types.ErrActionUnavailable),
		errors.Is(err, types.ErrEpisodeDone),
		errors.Is(err, ErrUnknownDomain),
		errors.Is(err, ErrInvalidParams):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		s.logger.Error().Err(err).Str("path", c.Request.URL.Path).Msg("environment failure")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (s *Server) lookup(c *gin.Context) (*session, bool) {
	id := c.Param("id")
	sess, ok := s.get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("no environment with id %s", id)})
	}
	return sess, ok
}

func (s *Server) handleList(c *gin.Context) {
	s.lock.Lock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	s.lock.Unlock()
	sort.Strings(ids)
	c.JSON(http.StatusOK, gin.H{"envs": ids})
}

func (s *Server) handleCreate(c *gin.Context) {
	config := DomainConfig{}
	if err := c.ShouldBindJSON(&config); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to unmarshal request"})
		return
	}
	root, err := BuildDomain(config)
	if err != nil {
		s.fail(c, err)
		return
	}
	env, err := types.NewGraphEnv(root, types.WithLogger(s.logger))
	if err != nil {
		s.fail(c, err)
		return
	}
	id := s.add(&session{domain: config.Domain, env: env})
	s.metrics.sessions.Inc()
	s.logger.Info().Str("id", id).Str("domain", config.Domain).Msg("created environment")
	c.JSON(http.StatusCreated, gin.H{
		"id":              id,
		"domain":          config.Domain,
		"max_num_actions": env.MaxNumActions(),
	})
}

func (s *Server) handleReset(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	obs, err := sess.env.Reset()
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"observation": obs,
		"terminal":    sess.env.Done(),
	})
}

type stepRequest struct {
	Action *int `json:"action"`
}

func (s *Server) handleStep(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	req := stepRequest{}
	if err := c.ShouldBindJSON(&req); err != nil || req.Action == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "expected an integer action"})
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()

	result, err := sess.env.Step(*req.Action)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.metrics.steps.WithLabelValues(sess.domain).Inc()
	if result.Terminal {
		s.metrics.episodes.WithLabelValues(sess.domain).Inc()
	}
	c.JSON(http.StatusOK, gin.H{
		"observation": result.Observation,
		"reward":      result.Reward,
		"terminal":    result.Terminal,
		"info":        result.Info,
	})
}

func (s *Server) handleSpaces(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{
		"domain":            sess.domain,
		"action_space":      sess.env.ActionSpace(),
		"observation_space": sess.env.ObservationSpace(),
	})
}

func (s *Server) handleDelete(c *gin.Context) {
	id := c.Param("id")
	s.lock.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.lock.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("no environment with id %s", id)})
		return
	}
	s.metrics.sessions.Dec()
	c.JSON(http.StatusOK, gin.H{"message": "ok"})
}
