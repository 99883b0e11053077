package model

import "time"

// URL - запись хранилища: короткий код, целевой URL и владелец
type URL struct {
	ShortCode string    `json:"short_code"`
	LongURL   string    `json:"long_url"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// URLRecord - запись без ключа, как она лежит в /urls.json
type URLRecord struct {
	LongURL string `json:"long_url"`
	OwnerID string `json:"owner_id"`
}

// URLMap - отображение короткий код -> запись
type URLMap map[string]URLRecord

func NewURLMap(urls []URL) URLMap {
	m := make(URLMap, len(urls))
	for _, u := range urls {
		m[u.ShortCode] = URLRecord{LongURL: u.LongURL, OwnerID: u.OwnerID}
	}
	return m
}

type CreateURLRequest struct {
	LongURL string `json:"long_url" form:"longURL" binding:"required"`
}

type UpdateURLRequest struct {
	LongURL string `json:"long_url" form:"longURL" binding:"required"`
}

type URLResponse struct {
	ShortCode string    `json:"short_code"`
	LongURL   string    `json:"long_url"`
	ShortURL  string    `json:"short_url"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// URLDetails - данные страницы короткой ссылки вместе с аналитикой
type URLDetails struct {
	ID             string  `json:"id"`
	LongURL        string  `json:"long_url"`
	ShortURL       string  `json:"short_url"`
	User           string  `json:"user"`
	Visits         []Visit `json:"visits"`
	TotalVisits    int     `json:"total_visits"`
	UniqueVisitors int     `json:"unique_visitors"`
}
