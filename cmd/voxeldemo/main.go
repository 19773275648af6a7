// voxeldemo runs a debug HTTP surface over a region.Manager backed by
// the classic heightfield generator: inspect resident chunks, trigger a
// tick, and fetch a chunk's greedy mesh as JSON. It is an external
// collaborator over the core, not part of it — there is no network
// transport inside internal/voxel itself.
package main

import (
	"context"
	"flag"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/almondvoxel/voxelcore/internal/config"
	"github.com/almondvoxel/voxelcore/internal/logging"
	"github.com/almondvoxel/voxelcore/internal/observability"
	"github.com/almondvoxel/voxelcore/internal/terrain"
	"github.com/almondvoxel/voxelcore/internal/voxel/chunk"
	"github.com/almondvoxel/voxelcore/internal/voxel/effects"
	"github.com/almondvoxel/voxelcore/internal/voxel/meshing"
	"github.com/almondvoxel/voxelcore/internal/voxel/region"
	"github.com/almondvoxel/voxelcore/internal/voxel/storage"
	"github.com/almondvoxel/voxelcore/internal/voxel/voxeltype"
	"github.com/almondvoxel/voxelcore/internal/voxelauth"
)

type server struct {
	manager *region.Manager
	log     *logging.Logger
	metrics *observability.Metrics
}

func main() {
	addr := flag.String("addr", ":8088", "listen address")
	configPath := flag.String("config", "", "path to a voxelcore YAML config file")
	seed := flag.Int64("seed", 1337, "terrain seed")
	flag.Parse()

	log := logging.ForComponent("voxeldemo")

	ctx := context.Background()
	shutdownTelemetry, err := observability.InitTelemetry(ctx, "voxeldemo")
	if err != nil {
		log.Warn("opentelemetry disabled: %v", err)
	} else {
		defer shutdownTelemetry(ctx)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("load config: %v", err)
		cfg = config.DefaultConfig()
	}

	extent := voxeltype.CubicExtent(cfg.Region.ChunkEdge)
	heightfield := terrain.NewClassicHeightfield(extent, terrain.DefaultClassicConfig(), *seed)

	manager := region.New(chunk.Config{
		Extent:          extent,
		EnableMaterials: true,
		EffectChannels:  effects.Channels{Density: true, Velocity: true, Lifetime: true},
	})
	manager.SetLoader(heightfield.Load)

	if cfg.Storage.BadgerPath != "" {
		store, err := storage.NewBadgerStore(cfg.Storage.BadgerPath)
		if err != nil {
			log.Error("open badger store at %s: %v", cfg.Storage.BadgerPath, err)
		} else {
			manager.SetSaver(store.Saver())
		}
	}

	if cfg.Region.AutoTuneMemory {
		const bytesPerChunk = int64(64 * 1024)
		if err := manager.AutoTuneResident(bytesPerChunk, 0.25); err != nil {
			log.Warn("auto-tune resident budget: %v", err)
			manager.SetMaxResident(cfg.Region.MaxResident)
		}
	} else {
		manager.SetMaxResident(cfg.Region.MaxResident)
	}

	metrics := observability.NewMetrics()
	manager.SetMetrics(metrics)
	observability.ServeHTTP(":2112")

	srv := &server{manager: manager, log: log, metrics: metrics}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.POST("/api/auth/token", srv.handleIssueToken)
	router.GET("/health", srv.handleHealth)

	protected := router.Group("/api")
	protected.Use(srv.jwtMiddleware())
	{
		protected.GET("/chunks", srv.handleListChunks)
		protected.GET("/chunks/:x/:y/:z/mesh", srv.handleChunkMesh)
		protected.POST("/chunks/:x/:y/:z/stamp", srv.handleStampEffect)
		protected.POST("/tick", srv.handleTick)
	}

	log.Info("voxeldemo listening on %s", *addr)
	if err := router.Run(*addr); err != nil {
		log.Error("server exited: %v", err)
	}
}

func (s *server) jwtMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		const prefix = "Bearer "
		if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		operator, ok := voxelauth.Validate(header[len(prefix):])
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set("operator", operator)
		c.Next()
	}
}

func (s *server) handleIssueToken(c *gin.Context) {
	var req struct {
		Operator string `json:"operator" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := voxelauth.Issue(req.Operator, 24*time.Hour)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (s *server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "resident": s.manager.Resident()})
}

func (s *server) handleListChunks(c *gin.Context) {
	type chunkSummary struct {
		X       int32 `json:"x"`
		Y       int32 `json:"y"`
		Z       int32 `json:"z"`
		Dirty   bool  `json:"dirty"`
	}

	var out []chunkSummary
	s.manager.ForEachLoaded(func(key voxeltype.RegionKey, st *chunk.Storage) {
		out = append(out, chunkSummary{X: key.X, Y: key.Y, Z: key.Z, Dirty: st.Dirty()})
	})

	c.JSON(http.StatusOK, gin.H{"chunks": out, "count": len(out)})
}

func (s *server) handleChunkMesh(c *gin.Context) {
	key, err := parseRegionKey(c.Param("x"), c.Param("y"), c.Param("z"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	st, err := s.manager.Assure(key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	_, span := observability.Tracer().Start(c.Request.Context(), "mesh.greedy")
	defer span.End()

	start := time.Now()
	result := meshing.GreedyMesh(st, meshing.DefaultIsOpaque)
	s.metrics.MeshBuildTime.WithLabelValues("greedy").Observe(time.Since(start).Seconds())
	c.JSON(http.StatusOK, gin.H{
		"vertex_count": len(result.Vertices),
		"index_count":  len(result.Indices),
		"vertices":     result.Vertices,
		"indices":      result.Indices,
	})
}

// handleStampEffect stamps a one-shot particle brush into a chunk cell.
func (s *server) handleStampEffect(c *gin.Context) {
	key, err := parseRegionKey(c.Param("x"), c.Param("y"), c.Param("z"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req struct {
		Local [3]int        `json:"local" binding:"required"`
		Brush effects.Brush `json:"brush"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	st, err := s.manager.Assure(key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	stamped := effects.StampBrush(st, req.Local, req.Brush)
	c.JSON(http.StatusOK, gin.H{"stamped": stamped})
}

func (s *server) handleTick(c *gin.Context) {
	var req struct {
		Budget int `json:"budget"`
	}
	_ = c.ShouldBindJSON(&req)

	_, span := observability.Tracer().Start(c.Request.Context(), "region.tick")
	defer span.End()

	processed, err := s.manager.Tick(req.Budget)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"processed": processed})
}

func parseRegionKey(xs, ys, zs string) (voxeltype.RegionKey, error) {
	x, err := strconv.ParseInt(xs, 10, 32)
	if err != nil {
		return voxeltype.RegionKey{}, err
	}
	y, err := strconv.ParseInt(ys, 10, 32)
	if err != nil {
		return voxeltype.RegionKey{}, err
	}
	z, err := strconv.ParseInt(zs, 10, 32)
	if err != nil {
		return voxeltype.RegionKey{}, err
	}
	return voxeltype.RegionKey{X: int32(x), Y: int32(y), Z: int32(z)}, nil
}
