package repository

import (
	"context"

	"gorm.io/gorm"

	"vergissmeinnicht/internal/dbmysql"
)

// GifCatalog lists the purchasable gifs.
type GifCatalog interface {
	ListGifs(ctx context.Context) ([]*dbmysql.Gif, error)
}

type gifCatalog struct {
	db *gorm.DB
}

func NewGifCatalog(db *gorm.DB) GifCatalog {
	return &gifCatalog{db: db}
}

func (c *gifCatalog) ListGifs(ctx context.Context) ([]*dbmysql.Gif, error) {
	var gifs []*dbmysql.Gif
	err := c.db.WithContext(ctx).Order("price ASC, name ASC").Find(&gifs).Error
	return gifs, err
}
