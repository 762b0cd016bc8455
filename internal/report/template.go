package report

// ABTemplate mirrors the summary ab prints after a benchmark.
const ABTemplate = `
Benchmarking {{hostname}} (be patient).....done

Server Software:        {{response-header-server}}
Server Hostname:        {{hostname}}
Server Port:            {{port}}
SSL/TLS Protocol:       {{request-tls-protocol}}
TLS Server Name:        {{hostname}}

Document Path:          {{pathand}}
Document Length:        {{request-length}}

Concurrency Level:      {{concurrency}}
Time taken for tests:   {{result-duration}} ms
Complete requests:      {{statistics-totalRequestCountSuccess}}
Failed requests:        {{statistics-totalRequestCountFailure}}
Total transferred:      {{statistics-totalGlobalDownloadedBytes}} bytes
HTML transferred:       {{statistics-totalGlobalDownloadedBytes}} bytes
Requests per second:    {{statistics-totalRequestCountPerSecond}} [#/sec] (mean)
Time per request:       {{statistics-totalRequestDurationAverage}} [ms] (mean)
Transfer rate:          {{statistics-totalGlobalDownloadedBytesPerSecond}} [bytes/sec] received
`
