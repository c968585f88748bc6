// Package http implements the HTTP handlers of the dashboard. Handlers stay
// thin: they parse the request, call a service and format the response.
//
// # Endpoints
//
//	GET  /api/charts                   chart list in panel order
//	GET  /api/charts/{id}              Plotly figure JSON
//	GET  /api/charts/{id}/data.csv     transformed table, UTF-8 with BOM
//	GET  /api/charts/{id}/image.png    static image (?width=&height=)
//	POST /api/charts/refresh           drop cached builds and rebuild
//	GET  /api/sources                  source file inventory
//	GET  /api/sources/{name}           one source file
//	GET  /api/health[/ready|/live]     health checks
//	GET  /api/version                  build information
//
// # Error Handling
//
// Errors are written as RFC 7807 problems by errors.ErrorHandler. A chart
// with nothing to draw answers 204 and a chart that carries a user notice
// answers 422 with the notice as the problem detail:
//
//	{
//	    "type": "/errors/chart/notice",
//	    "title": "Chart Unavailable",
//	    "status": 422,
//	    "detail": "연도 컬럼을 찾을 수 없습니다. 컬럼 이름을 확인해 주세요.",
//	    "instance": "/api/charts/tutoring-cost"
//	}
//
// # Testing
//
// Handlers are tested with httptest against testify mocks of the service
// interfaces.
package http
