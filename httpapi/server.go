package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/skanaujia/defmap/conc"
	"github.com/skanaujia/defmap/storage"
)

// Server exposes a storage.Store over HTTP.  Values are JSON lists; the
// append endpoint goes through the store's Update primitive so concurrent
// appenders never lose an element.  Watchers get change events over a
// websocket.
type Server struct {
	store    storage.Store
	events   *conc.Broadcaster[string, []any]
	registry *prometheus.Registry
	metrics  metrics
	upgrader websocket.Upgrader
}

func New(store storage.Store) *Server {
	out := &Server{
		store:    store,
		events:   conc.NewBroadcaster[string, []any](),
		registry: prometheus.NewRegistry(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	out.metrics.register(out.registry)
	return out
}

func (s *Server) Register(router gin.IRouter) {
	v1 := router.Group("/v1")
	v1.GET("/keys", s.listKeys)
	v1.GET("/keys/:key", s.getKey)
	v1.PUT("/keys/:key", s.putKey)
	v1.DELETE("/keys/:key", s.deleteKey)
	v1.POST("/keys/:key/items", s.appendItem)
	v1.GET("/keys/:key/watch", s.watchKey)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
}

func (s *Server) countOp(op string, err error) {
	s.metrics.ops.WithLabelValues(op).Inc()
	if err != nil {
		s.metrics.errors.WithLabelValues(op).Inc()
	}
}

func (s *Server) listKeys(c *gin.Context) {
	keys, err := s.store.Keys()
	s.countOp("keys", err)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if keys == nil {
		keys = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"keys": keys})
}

func (s *Server) getKey(c *gin.Context) {
	key := c.Param("key")
	value, ok, err := s.store.Get(key)
	s.countOp("get", err)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "key not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"key": key, "value": value})
}

func (s *Server) putKey(c *gin.Context) {
	key := c.Param("key")
	var value []any
	if err := c.ShouldBindJSON(&value); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be a JSON array"})
		return
	}
	err := s.store.Set(key, value)
	s.countOp("set", err)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.events.Publish(conc.Event[string, []any]{Key: key, Value: value})
	c.JSON(http.StatusOK, gin.H{"key": key, "value": value})
}

func (s *Server) appendItem(c *gin.Context) {
	key := c.Param("key")
	var item any
	if err := c.ShouldBindJSON(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "body must be a JSON value"})
		return
	}
	value, err := s.store.Update(key, func(list []any) ([]any, error) {
		return append(list, item), nil
	})
	s.countOp("update", err)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.events.Publish(conc.Event[string, []any]{Key: key, Value: value})
	c.JSON(http.StatusOK, gin.H{"key": key, "value": value})
}

func (s *Server) deleteKey(c *gin.Context) {
	key := c.Param("key")
	err := s.store.Delete(key)
	s.countOp("delete", err)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.events.Publish(conc.Event[string, []any]{Key: key, Deleted: true})
	c.JSON(http.StatusOK, gin.H{"key": key, "deleted": true})
}
