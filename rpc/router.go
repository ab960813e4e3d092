package rpc

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func (rpc *RpcController) NewRouter() *gin.Engine {
	router := gin.New()
	if logrus.GetLevel() > logrus.DebugLevel {
		logger := gin.LoggerWithConfig(gin.LoggerConfig{
			Formatter: ginLogFormatter,
			Output:    logrus.StandardLogger().Out,
			SkipPaths: []string{"/"},
		})
		router.Use(logger)
	}
	router.Use(gin.RecoveryWithWriter(logrus.StandardLogger().Out))
	return rpc.addRouter(router)
}

func (rpc *RpcController) addRouter(router *gin.Engine) *gin.Engine {
	router.GET("/", rpc.writeListOfEndpoints)
	router.GET("ping", rpc.Ping)
	// query API
	router.GET("state", rpc.State)
	router.GET("pending", rpc.Pending)
	router.GET("status", rpc.Status)
	router.GET("metrics", rpc.metricsHandler())
	// ledger API
	limited := router.Group("/", rpc.Limiter.Middleware())
	limited.POST("schedule", rpc.Schedule)
	limited.POST("settle", rpc.Settle)
	return router
}

// writes a list of available rpc endpoints as an html page
func (rpc *RpcController) writeListOfEndpoints(c *gin.Context) {
	routerMap := map[string]string{
		"ping":    "",
		"state":   "",
		"pending": "",
		"status":  "",
		"metrics": "",
	}
	postNames := []string{"schedule", "settle"}

	names := []string{}
	for name := range routerMap {
		names = append(names, name)
	}
	sort.Strings(names)
	buf := new(bytes.Buffer)
	buf.WriteString("<html><body>")
	buf.WriteString("<br>Available endpoints:<br>")
	for _, name := range names {
		link := fmt.Sprintf("http://%s/%s", c.Request.Host, name)
		buf.WriteString(fmt.Sprintf("<a href=\"%s\">%s</a></br>", link, link))
	}
	buf.WriteString("<br>POST endpoints:<br>")
	buf.WriteString(strings.Join(postNames, "</br>"))
	buf.WriteString("</body></html>")
	c.Data(http.StatusOK, "text/html", buf.Bytes())
}
