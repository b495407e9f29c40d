package main

import (
	"database/sql"
	"fmt"
)

func createPost(db *sql.DB, title, content, image, section string) (int64, error) {
	result, err := db.Exec(`
		INSERT INTO posts (title, content, image, section)
		VALUES (?, ?, ?, ?)`, title, content, image, section)
	if err != nil {
		return 0, fmt.Errorf("inserting post: %w", err)
	}
	return result.LastInsertId()
}

// listPostsBySection returns the posts filed under section, newest first.
// An unknown section yields an empty slice.
func listPostsBySection(db *sql.DB, section string) ([]Post, error) {
	query := `
		SELECT id, title, content, image, section, created
		FROM posts
		WHERE section = ?
		ORDER BY created DESC, id DESC`
	rows, err := db.Query(query, section)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	defer rows.Close()

	posts := []Post{}
	for rows.Next() {
		var post Post
		err := rows.Scan(&post.ID, &post.Title, &post.Content, &post.Image, &post.Section, &post.Created)
		if err != nil {
			return nil, fmt.Errorf("scanning post: %w", err)
		}
		posts = append(posts, post)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return posts, nil
}
