// File path: internal/store/schema.go
package store

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS complaint_categories (
                id INTEGER PRIMARY KEY AUTOINCREMENT,
                code_alpha TEXT NOT NULL UNIQUE,
                code_numeric TEXT NOT NULL UNIQUE,
                name TEXT NOT NULL UNIQUE
        );`,
	`CREATE TABLE IF NOT EXISTS institutions (
                id INTEGER PRIMARY KEY AUTOINCREMENT,
                code TEXT NOT NULL UNIQUE,
                name TEXT NOT NULL,
                email TEXT NOT NULL DEFAULT ''
        );`,
	`CREATE TABLE IF NOT EXISTS category_institutions (
                category_id INTEGER NOT NULL,
                institution_id INTEGER NOT NULL,
                position INTEGER NOT NULL DEFAULT 0,
                PRIMARY KEY (category_id, institution_id),
                FOREIGN KEY(category_id) REFERENCES complaint_categories(id) ON DELETE CASCADE,
                FOREIGN KEY(institution_id) REFERENCES institutions(id) ON DELETE CASCADE
        );`,
	`CREATE TABLE IF NOT EXISTS doc_types (
                id INTEGER PRIMARY KEY AUTOINCREMENT,
                code TEXT NOT NULL UNIQUE,
                name TEXT NOT NULL,
                description TEXT NOT NULL DEFAULT ''
        );`,
	`CREATE TABLE IF NOT EXISTS incident_templates (
                id INTEGER PRIMARY KEY AUTOINCREMENT,
                incident_type INTEGER NOT NULL UNIQUE,
                category_id INTEGER,
                display_name TEXT NOT NULL,
                html TEXT NOT NULL,
                updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
                FOREIGN KEY(category_id) REFERENCES complaint_categories(id) ON DELETE SET NULL
        );`,
	`CREATE TABLE IF NOT EXISTS numbering_counters (
                scope TEXT NOT NULL CHECK (scope IN ('global', 'category')),
                category_key INTEGER NOT NULL DEFAULT 0,
                category_id INTEGER,
                next_value INTEGER NOT NULL,
                updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
                PRIMARY KEY (scope, category_key),
                CHECK ((scope = 'global' AND category_id IS NULL) OR (scope = 'category' AND category_id IS NOT NULL))
        );`,
	`CREATE TABLE IF NOT EXISTS personal_data (
                id INTEGER PRIMARY KEY AUTOINCREMENT,
                first_name TEXT NOT NULL,
                last_name TEXT NOT NULL,
                email TEXT NOT NULL,
                country TEXT NOT NULL,
                county TEXT NOT NULL,
                city TEXT NOT NULL,
                street TEXT NOT NULL,
                house_number TEXT NOT NULL,
                building TEXT,
                staircase TEXT,
                apartment TEXT,
                phone_number TEXT NOT NULL,
                created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
                UNIQUE(email, phone_number)
        );`,
	`CREATE TABLE IF NOT EXISTS complaint_contents (
                id INTEGER PRIMARY KEY AUTOINCREMENT,
                personal_data_id INTEGER NOT NULL,
                incident_type_id INTEGER NOT NULL,
                category_id INTEGER NOT NULL,
                doc_type_id INTEGER NOT NULL,
                primary_institution_id INTEGER,
                is_public BOOLEAN NOT NULL DEFAULT 0,
                obj_no INTEGER NOT NULL,
                gen_no INTEGER NOT NULL,
                total_no INTEGER NOT NULL UNIQUE,
                full_public_rep_no TEXT NOT NULL UNIQUE,
                full_internal_rep_no TEXT NOT NULL,
                is_validated BOOLEAN NOT NULL DEFAULT 0,
                incident_date DATETIME NOT NULL,
                incident_county TEXT NOT NULL,
                incident_city TEXT,
                incident_address TEXT,
                destination_institute TEXT NOT NULL,
                incident_description TEXT NOT NULL,
                s3_key TEXT NOT NULL,
                attachments_s3 TEXT NOT NULL DEFAULT '[]',
                created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
                UNIQUE(category_id, obj_no),
                FOREIGN KEY(personal_data_id) REFERENCES personal_data(id),
                FOREIGN KEY(category_id) REFERENCES complaint_categories(id),
                FOREIGN KEY(doc_type_id) REFERENCES doc_types(id),
                FOREIGN KEY(primary_institution_id) REFERENCES institutions(id)
        );`,
	`CREATE TABLE IF NOT EXISTS audit (
                id INTEGER PRIMARY KEY AUTOINCREMENT,
                action TEXT NOT NULL,
                detail TEXT,
                created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
        );`,
	`CREATE INDEX IF NOT EXISTS idx_category_institutions_position ON category_institutions(category_id, position);`,
	`CREATE INDEX IF NOT EXISTS idx_complaints_personal ON complaint_contents(personal_data_id);`,
	`CREATE INDEX IF NOT EXISTS idx_complaints_category_created ON complaint_contents(category_id, created_at);`,
	`INSERT INTO audit(action, detail)
        SELECT 'schema_created', 'initial schema loaded'
        WHERE NOT EXISTS (SELECT 1 FROM audit WHERE action = 'schema_created');`,
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS complaint_categories (
                id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
                code_alpha CHAR(3) NOT NULL UNIQUE,
                code_numeric CHAR(2) NOT NULL UNIQUE,
                name VARCHAR(191) NOT NULL UNIQUE
        ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
	`CREATE TABLE IF NOT EXISTS institutions (
                id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
                code VARCHAR(5) NOT NULL UNIQUE,
                name VARCHAR(255) NOT NULL,
                email VARCHAR(255) NOT NULL DEFAULT ''
        ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
	`CREATE TABLE IF NOT EXISTS category_institutions (
                category_id BIGINT NOT NULL,
                institution_id BIGINT NOT NULL,
                position INT NOT NULL DEFAULT 0,
                PRIMARY KEY (category_id, institution_id),
                INDEX idx_category_institutions_position (category_id, position),
                FOREIGN KEY (category_id) REFERENCES complaint_categories(id) ON DELETE CASCADE,
                FOREIGN KEY (institution_id) REFERENCES institutions(id) ON DELETE CASCADE
        ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
	`CREATE TABLE IF NOT EXISTS doc_types (
                id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
                code CHAR(3) NOT NULL UNIQUE,
                name VARCHAR(255) NOT NULL,
                description TEXT
        ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
	`CREATE TABLE IF NOT EXISTS incident_templates (
                id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
                incident_type INT NOT NULL UNIQUE,
                category_id BIGINT NULL,
                display_name VARCHAR(255) NOT NULL,
                html MEDIUMTEXT NOT NULL,
                updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
                FOREIGN KEY (category_id) REFERENCES complaint_categories(id) ON DELETE SET NULL
        ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
	`CREATE TABLE IF NOT EXISTS numbering_counters (
                scope VARCHAR(16) NOT NULL,
                category_key BIGINT NOT NULL DEFAULT 0,
                category_id BIGINT NULL,
                next_value BIGINT NOT NULL,
                updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
                PRIMARY KEY (scope, category_key)
        ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
	`CREATE TABLE IF NOT EXISTS personal_data (
                id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
                first_name VARCHAR(255) NOT NULL,
                last_name VARCHAR(255) NOT NULL,
                email VARCHAR(191) NOT NULL,
                country VARCHAR(255) NOT NULL,
                county VARCHAR(255) NOT NULL,
                city VARCHAR(255) NOT NULL,
                street VARCHAR(255) NOT NULL,
                house_number VARCHAR(32) NOT NULL,
                building VARCHAR(32) NULL,
                staircase VARCHAR(32) NULL,
                apartment VARCHAR(32) NULL,
                phone_number VARCHAR(32) NOT NULL,
                created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
                UNIQUE KEY uq_personal_email_phone (email, phone_number)
        ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
	`CREATE TABLE IF NOT EXISTS complaint_contents (
                id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
                personal_data_id BIGINT NOT NULL,
                incident_type_id INT NOT NULL,
                category_id BIGINT NOT NULL,
                doc_type_id BIGINT NOT NULL,
                primary_institution_id BIGINT NULL,
                is_public BOOLEAN NOT NULL DEFAULT FALSE,
                obj_no BIGINT NOT NULL,
                gen_no INT NOT NULL,
                total_no BIGINT NOT NULL UNIQUE,
                full_public_rep_no VARCHAR(64) NOT NULL UNIQUE,
                full_internal_rep_no VARCHAR(512) NOT NULL,
                is_validated BOOLEAN NOT NULL DEFAULT FALSE,
                incident_date DATETIME NOT NULL,
                incident_county VARCHAR(255) NOT NULL,
                incident_city VARCHAR(255) NULL,
                incident_address VARCHAR(512) NULL,
                destination_institute VARCHAR(512) NOT NULL,
                incident_description TEXT NOT NULL,
                s3_key VARCHAR(512) NOT NULL,
                attachments_s3 TEXT NOT NULL,
                created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
                UNIQUE KEY uq_complaint_category_obj (category_id, obj_no),
                INDEX idx_complaints_personal (personal_data_id),
                INDEX idx_complaints_category_created (category_id, created_at),
                FOREIGN KEY (personal_data_id) REFERENCES personal_data(id),
                FOREIGN KEY (category_id) REFERENCES complaint_categories(id),
                FOREIGN KEY (doc_type_id) REFERENCES doc_types(id),
                FOREIGN KEY (primary_institution_id) REFERENCES institutions(id)
        ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
	`CREATE TABLE IF NOT EXISTS audit (
                id BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
                action VARCHAR(64) NOT NULL,
                detail TEXT,
                created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
        ) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`,
	`INSERT INTO audit(action, detail)
        SELECT 'schema_created', 'initial schema loaded' FROM DUAL
        WHERE NOT EXISTS (SELECT 1 FROM audit WHERE action = 'schema_created');`,
}
